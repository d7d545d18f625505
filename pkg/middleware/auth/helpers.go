package auth

import "context"

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFrom returns the caller stored by the middleware, or the zero User.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userCtxKey).(User)
	return u, ok && u.Username != ""
}

func (m *Middleware) GetUser(ctx context.Context) User {
	u, _ := UserFrom(ctx)
	return u
}

func (m *Middleware) IsRole(ctx context.Context, role string) bool {
	u, ok := UserFrom(ctx)
	return ok && (u.Role.Name == role || m.isAdminRole(u.Role.Name))
}

func (m *Middleware) IsAdmin(ctx context.Context) bool {
	u, ok := UserFrom(ctx)
	return ok && m.isAdminRole(u.Role.Name)
}

func (m *Middleware) IsUser(ctx context.Context, username string) bool {
	u, ok := UserFrom(ctx)
	return ok && (u.Username == username || m.isAdminRole(u.Role.Name))
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	_, ok := UserFrom(ctx)
	return ok
}

func (m *Middleware) isAdminRole(name string) bool {
	return m.adminRole != "" && name == m.adminRole
}
