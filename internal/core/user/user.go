package user

import (
	"context"
	"time"
)

const PermissionAdmin = "admin"

// User is the authenticated principal carried through a request.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions,omitempty"`
	SessionID   string    `json:"-"`
	ExpiresAt   time.Time `json:"-"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAdmin is the capability predicate for every administrative operation.
func IsAdmin(u *User) bool {
	return u != nil && u.HasPermission(PermissionAdmin)
}

type ctxKey string

const contextUserKey ctxKey = "user"

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

func FromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok && u != nil
}
