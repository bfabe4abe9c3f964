package middleware

import "context"

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey = contextKey("user")

// Casbin subjects derived from the administrator flag.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserInfo represents the authenticated user carried in the request context.
type UserInfo struct {
	ID       int64
	Username string
	Email    string
	IsAdmin  bool
}

// Role returns the authorization subject of the user.
func (u *UserInfo) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// GetUserInfo retrieves the user information from the request context.
// It returns nil for anonymous requests.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	return nil
}

// IsAuthenticated reports whether the request carries a user.
func IsAuthenticated(ctx context.Context) bool {
	return GetUserInfo(ctx) != nil
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}
