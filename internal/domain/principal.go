package domain

import "errors"

// PrincipalKind - вид действующего лица.
type PrincipalKind string

const (
	KindGuest PrincipalKind = "guest"
	KindUser  PrincipalKind = "user"
	KindAdmin PrincipalKind = "admin"
)

// User - зарегистрированный пользователь.
type User struct {
	PID      int64  `json:"pid"`
	UserID   string `json:"userId"`
	NickName string `json:"nickName"`
	Email    string `json:"email"`
}

// Validate проверяет, что восстановленные данные пригодны для использования.
func (u User) Validate() error {
	if u.PID <= 0 {
		return errors.New("user pid is missing")
	}
	if u.UserID == "" {
		return errors.New("user id is missing")
	}
	return nil
}

// Admin - администратор блога.
type Admin struct {
	ID        int64  `json:"id"`
	AdminName string `json:"adminName"`
	Email     string `json:"email"`
}

func (a Admin) Validate() error {
	if a.ID <= 0 {
		return errors.New("admin id is missing")
	}
	return nil
}

// Principal - тот, кто выполняет действие: гость, пользователь или админ.
// Нулевое значение - гость.
type Principal struct {
	user  *User
	admin *Admin
}

// Guest возвращает неаутентифицированного участника.
func Guest() Principal { return Principal{} }

func UserPrincipal(u User) Principal { return Principal{user: &u} }

func AdminPrincipal(a Admin) Principal { return Principal{admin: &a} }

func (p Principal) Kind() PrincipalKind {
	switch {
	case p.admin != nil:
		return KindAdmin
	case p.user != nil:
		return KindUser
	default:
		return KindGuest
	}
}

func (p Principal) IsGuest() bool { return p.user == nil && p.admin == nil }

// User возвращает данные пользователя, если это пользователь.
func (p Principal) User() (User, bool) {
	if p.user == nil {
		return User{}, false
	}
	return *p.user, true
}

// Admin возвращает данные администратора, если это администратор.
func (p Principal) Admin() (Admin, bool) {
	if p.admin == nil {
		return Admin{}, false
	}
	return *p.admin, true
}

// ActorID - id, под которым бэкенд записывает автора (pid или id админа).
func (p Principal) ActorID() int64 {
	switch {
	case p.admin != nil:
		return p.admin.ID
	case p.user != nil:
		return p.user.PID
	default:
		return 0
	}
}

// AuthorKind - вид автора для записи комментария.
func (p Principal) AuthorKind() AuthorKind {
	if p.admin != nil {
		return AuthorAdmin
	}
	return AuthorUser
}

// DisplayName - ник пользователя или имя админа.
func (p Principal) DisplayName() string {
	switch {
	case p.admin != nil:
		return p.admin.AdminName
	case p.user != nil:
		return p.user.NickName
	default:
		return ""
	}
}

// Equal сравнивает участников по значению.
func (p Principal) Equal(other Principal) bool {
	if p.Kind() != other.Kind() {
		return false
	}
	switch p.Kind() {
	case KindAdmin:
		return *p.admin == *other.admin
	case KindUser:
		return *p.user == *other.user
	default:
		return true
	}
}
