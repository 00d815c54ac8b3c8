package devbackend

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/blogfront/internal/domain"
)

// Учетные данные тестовых участников.
const (
	SeedAdminName     = "admin"
	SeedAdminPassword = "admin1234"
	SeedUserID        = "hana01"
	SeedUserPassword  = "hana1234"
)

// Seeded - id созданных тестовых данных.
type Seeded struct {
	Admin    domain.Admin
	User     domain.User
	Posts    []domain.Post
	ThreadID int64 // пост с веткой комментариев
}

// FillWithMockData заполняет хранилище данными для ручной проверки клиента:
// админ, пользователь, посты на всех досках и ветка с ответом.
func FillWithMockData(ctx context.Context, s Storage, cost int) (Seeded, error) {
	var seeded Seeded

	adminHash, err := bcrypt.GenerateFromPassword([]byte(SeedAdminPassword), cost)
	if err != nil {
		return seeded, err
	}
	admin, err := s.CreateAdmin(ctx, AdminRecord{
		Admin:        domain.Admin{AdminName: SeedAdminName, Email: "admin@example.com"},
		PasswordHash: adminHash,
	})
	if err != nil {
		return seeded, fmt.Errorf("fill mock data: create admin: %w", err)
	}
	seeded.Admin = admin.Admin

	userHash, err := bcrypt.GenerateFromPassword([]byte(SeedUserPassword), cost)
	if err != nil {
		return seeded, err
	}
	user, err := s.CreateUser(ctx, UserRecord{
		Account: domain.Account{
			UserID:      SeedUserID,
			NickName:    "하나",
			Email:       "hana@example.com",
			PhoneNumber: "010-1234-5678",
		},
		PasswordHash: userHash,
	})
	if err != nil {
		return seeded, fmt.Errorf("fill mock data: create user: %w", err)
	}
	seeded.User = userOf(user)

	// даты по возрастанию: клиент должен сам отсортировать новые вперед
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	drafts := []domain.Post{
		{BoardType: domain.BoardIT, Category: "Backend", Title: "Go 제네릭 정리", Content: "타입 파라미터와 제약 조건을 정리합니다.", Tags: domain.Tags{"go", "generics"}, AuthorID: admin.ID},
		{BoardType: domain.BoardIT, Category: "Frontend", Title: "React 상태 관리", Content: "Context와 커스텀 훅으로 상태를 나눕니다.", Tags: domain.Tags{"react", "hooks"}, AuthorID: admin.ID},
		{BoardType: domain.BoardIT, Category: "Database", Title: "PostgreSQL 인덱스", Content: "B-tree와 GIN 인덱스를 비교합니다.", Tags: domain.Tags{"postgres", "sql"}, AuthorID: user.PID},
		{BoardType: domain.BoardJapanese, Category: "일본어", Title: "JLPT N2 문법", Content: "자주 나오는 문법 정리.", Tags: domain.Tags{"jlpt"}, AuthorID: admin.ID},
		{BoardType: domain.BoardJapanese, Category: "문화", Title: "교토 여행기", Content: "가을의 교토.", Tags: domain.Tags{"여행", "교토"}, AuthorID: user.PID},
		{BoardType: domain.BoardCulture, Category: "문화", Title: "전시회 후기", Content: "현대미술관 전시 후기.", Tags: domain.Tags{"전시"}, AuthorID: admin.ID},
		{BoardType: domain.BoardDaily, Category: "게임", Title: "주말 게임 기록", Content: "인디 게임 세 편.", Tags: domain.Tags{"indie"}, AuthorID: user.PID},
		{BoardType: domain.BoardDaily, Category: "음악", Title: "요즘 듣는 음악", Content: "플레이리스트 공유.", Tags: domain.Tags{"playlist"}, AuthorID: admin.ID},
	}
	for i, d := range drafts {
		d.CreatedAt = base.Add(time.Duration(i) * 24 * time.Hour)
		post, err := s.CreatePost(ctx, d)
		if err != nil {
			return seeded, fmt.Errorf("fill mock data: create post %d: %w", i, err)
		}
		seeded.Posts = append(seeded.Posts, post)
	}

	thread := seeded.Posts[0]
	seeded.ThreadID = thread.ID

	c1, err := s.CreateComment(ctx, domain.Comment{
		PostID:     thread.ID,
		AuthorID:   user.PID,
		AuthorKind: domain.AuthorUser,
		Content:    "정리 감사합니다! 제약 조건 부분이 특히 좋았어요.",
	})
	if err != nil {
		return seeded, fmt.Errorf("fill mock data: create comment: %w", err)
	}

	_, err = s.CreateComment(ctx, domain.Comment{
		PostID:     thread.ID,
		AuthorID:   admin.ID,
		AuthorKind: domain.AuthorAdmin,
		Content:    "읽어주셔서 감사합니다.",
		Kind:       domain.ReplyTo(c1.ID),
	})
	if err != nil {
		return seeded, fmt.Errorf("fill mock data: create reply: %w", err)
	}

	_, err = s.CreateComment(ctx, domain.Comment{
		PostID:     thread.ID,
		AuthorID:   user.PID,
		AuthorKind: domain.AuthorUser,
		Content:    "다음 글도 기대할게요.",
	})
	if err != nil {
		return seeded, fmt.Errorf("fill mock data: create comment 2: %w", err)
	}
	return seeded, nil
}
