// Package authz решает, может ли участник менять комментарий или пост.
package authz

import "github.com/UkralStul/blogfront/internal/domain"

// Owned - сущность с автором: комментарий или пост.
type Owned interface {
	OwnerID() int64
}

// CanModify: админ может все, пользователь - только свое, гость - ничего.
func CanModify(p domain.Principal, target Owned) bool {
	if _, ok := p.Admin(); ok {
		return true
	}
	if u, ok := p.User(); ok {
		return u.PID == target.OwnerID()
	}
	return false
}

// CanWrite сообщает, можно ли писать посты и комментарии.
func CanWrite(p domain.Principal) bool {
	return !p.IsGuest()
}
