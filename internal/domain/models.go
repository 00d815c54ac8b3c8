package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BoardType - тип доски (раздела блога).
type BoardType string

const (
	BoardIT       BoardType = "it"
	BoardJapanese BoardType = "japanese"
	BoardCulture  BoardType = "culture"
	BoardDaily    BoardType = "daily"
)

// BoardTypes перечисляет доски в порядке отображения.
var BoardTypes = []BoardType{BoardIT, BoardJapanese, BoardCulture, BoardDaily}

// ParseBoardType разбирает тип доски без учета регистра.
func ParseBoardType(s string) (BoardType, error) {
	bt := BoardType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BoardTypes {
		if bt == known {
			return bt, nil
		}
	}
	return "", fmt.Errorf("unknown board type %q", s)
}

// AuthorKind - вид автора комментария, как его передает бэкенд.
type AuthorKind string

const (
	AuthorUser  AuthorKind = "USER"
	AuthorAdmin AuthorKind = "ADMIN"
)

// CommentKind различает корневой комментарий и ответ.
// Нулевое значение - корневой комментарий.
type CommentKind struct {
	reply    bool
	parentID int64
}

// TopLevel возвращает вид корневого комментария.
func TopLevel() CommentKind { return CommentKind{} }

// ReplyTo возвращает вид ответа на комментарий parentID.
func ReplyTo(parentID int64) CommentKind { return CommentKind{reply: true, parentID: parentID} }

func (k CommentKind) IsReply() bool { return k.reply }

// ParentID возвращает id родителя; ok=false для корневого комментария.
func (k CommentKind) ParentID() (id int64, ok bool) {
	return k.parentID, k.reply
}

func (k CommentKind) String() string {
	if !k.reply {
		return "top-level"
	}
	return fmt.Sprintf("reply to %d", k.parentID)
}

// Comment представляет комментарий к посту.
type Comment struct {
	ID         int64
	PostID     int64
	Content    string
	AuthorID   int64
	AuthorKind AuthorKind
	NickName   string
	Kind       CommentKind
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName - имя автора для отображения.
func (c Comment) DisplayName() string {
	if c.NickName != "" {
		return c.NickName
	}
	return fmt.Sprintf("사용자%d", c.AuthorID)
}

// OwnerID нужен предикату авторизации.
func (c Comment) OwnerID() int64 { return c.AuthorID }

// CommentDraft - данные для создания комментария, без id и временных меток.
type CommentDraft struct {
	PostID     int64
	Content    string
	AuthorID   int64
	AuthorKind AuthorKind
	Kind       CommentKind
}

// Post представляет пост в блоге.
type Post struct {
	ID        int64     `json:"id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	BoardType BoardType `json:"boardType"`
	Category  string    `json:"category"`
	Tags      Tags      `json:"tags"`
	AuthorID  int64     `json:"authorId"`
	NickName  string    `json:"nickName,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// OwnerID нужен предикату авторизации.
func (p Post) OwnerID() int64 { return p.AuthorID }

// PostDraft - редактируемые поля поста.
type PostDraft struct {
	Title     string
	Content   string
	BoardType BoardType
	Category  string
	Tags      Tags
}

// Tags - упорядоченный список тегов. На проводе это строка через запятую.
type Tags []string

// TagSeparator используется при сериализации тегов.
const TagSeparator = ", "

// ParseTags разбирает строку тегов через запятую, пустые элементы отбрасываются.
func ParseTags(s string) Tags {
	if strings.TrimSpace(s) == "" {
		return Tags{}
	}
	parts := strings.Split(s, ",")
	tags := make(Tags, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func (t Tags) String() string { return strings.Join(t, TagSeparator) }

func (t Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON принимает и строку, и массив: старые версии бэкенда отдавали массив.
func (t *Tags) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be a string or an array: %w", err)
	}
	tags := make(Tags, 0, len(list))
	for _, tag := range list {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	*t = tags
	return nil
}

// Account - учетная запись пользователя в том виде, в котором ее видит админка.
type Account struct {
	PID         int64     `json:"pid"`
	UserID      string    `json:"userId"`
	NickName    string    `json:"nickName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// Registration - данные формы регистрации.
type Registration struct {
	UserID          string `json:"userId"`
	NickName        string `json:"nickName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
}

// Theme - цветовая тема интерфейса.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)
