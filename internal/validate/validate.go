// Package validate содержит проверки форм, которые выполняются до отправки на бэкенд.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/UkralStul/blogfront/internal/domain"
)

const (
	MaxCommentLength = 300
	MaxTitleLength   = 50
	MaxContentLength = 2000

	MaxTags           = 5
	MaxTagLength      = 10
	MaxTagsSerialized = 80

	MinUserIDLength   = 4
	MinNickNameLength = 2
	MinPasswordLength = 6
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9-]+$`)
)

func invalid(field, format string, args ...any) error {
	return &domain.ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Comment проверяет текст комментария и возвращает его без пробелов по краям.
func Comment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("content", "comment cannot be empty")
	}
	if n := utf8.RuneCountInString(content); n > MaxCommentLength {
		return "", invalid("content", "comment is %d characters, limit is %d", n, MaxCommentLength)
	}
	return content, nil
}

// NormalizeTags убирает пустые теги и точные дубликаты, сохраняя порядок.
func NormalizeTags(tags domain.Tags) domain.Tags {
	seen := make(map[string]struct{}, len(tags))
	out := make(domain.Tags, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Tags нормализует теги и проверяет ограничения по количеству и длине.
func Tags(tags domain.Tags) (domain.Tags, error) {
	tags = NormalizeTags(tags)
	if len(tags) > MaxTags {
		return nil, invalid("tags", "%d tags given, at most %d allowed", len(tags), MaxTags)
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, invalid("tags", "tag %q is longer than %d characters", tag, MaxTagLength)
		}
	}
	if n := utf8.RuneCountInString(tags.String()); n > MaxTagsSerialized {
		return nil, invalid("tags", "tags take %d characters, limit is %d", n, MaxTagsSerialized)
	}
	return tags, nil
}

// Post проверяет черновик поста; теги возвращаются нормализованными.
func Post(d domain.PostDraft) (domain.PostDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return d, invalid("title", "title cannot be empty")
	}
	if n := utf8.RuneCountInString(d.Title); n > MaxTitleLength {
		return d, invalid("title", "title is %d characters, limit is %d", n, MaxTitleLength)
	}
	if strings.TrimSpace(d.Content) == "" {
		return d, invalid("content", "content cannot be empty")
	}
	if n := utf8.RuneCountInString(d.Content); n > MaxContentLength {
		return d, invalid("content", "content is %d characters, limit is %d", n, MaxContentLength)
	}
	if _, err := domain.ParseBoardType(string(d.BoardType)); err != nil {
		return d, invalid("boardType", "%v", err)
	}
	if strings.TrimSpace(d.Category) == "" {
		return d, invalid("category", "category is required")
	}
	tags, err := Tags(d.Tags)
	if err != nil {
		return d, err
	}
	d.Tags = tags
	return d, nil
}

// Registration проверяет форму регистрации так же, как это делала веб-версия.
func Registration(r domain.Registration) error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.NickName = strings.TrimSpace(r.NickName)
	switch {
	case r.UserID == "":
		return invalid("userId", "user id is required")
	case utf8.RuneCountInString(r.UserID) < MinUserIDLength:
		return invalid("userId", "user id must be at least %d characters", MinUserIDLength)
	case r.NickName == "":
		return invalid("nickName", "nickname is required")
	case utf8.RuneCountInString(r.NickName) < MinNickNameLength:
		return invalid("nickName", "nickname must be at least %d characters", MinNickNameLength)
	}
	if err := Password(r.Password); err != nil {
		return err
	}
	switch {
	case r.ConfirmPassword == "":
		return invalid("confirmPassword", "password confirmation is required")
	case r.ConfirmPassword != r.Password:
		return invalid("confirmPassword", "passwords do not match")
	case strings.TrimSpace(r.Email) == "":
		return invalid("email", "email is required")
	case !emailPattern.MatchString(r.Email):
		return invalid("email", "email format is invalid")
	case strings.TrimSpace(r.PhoneNumber) == "":
		return invalid("phoneNumber", "phone number is required")
	case !phonePattern.MatchString(r.PhoneNumber):
		return invalid("phoneNumber", "phone number may contain digits and dashes only")
	}
	return nil
}

// Password проверяет минимальную длину пароля.
func Password(p string) error {
	if p == "" {
		return invalid("password", "password is required")
	}
	if utf8.RuneCountInString(p) < MinPasswordLength {
		return invalid("password", "password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Login проверяет, что оба поля формы входа заполнены.
func Login(name, password string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("login", "id is required")
	}
	if password == "" {
		return invalid("password", "password is required")
	}
	return nil
}
