package auth

import "time"

// Middleware verifies HS256 bearer tokens and stores the caller in the request
// context. It never rejects a request on its own; guards decide that.
type Middleware struct {
	secret     []byte
	issuer     string
	audience   string
	leeway     time.Duration
	tokenTTL   time.Duration
	cookieName string
	adminRole  string
	devBypass  bool
}

// Config is the explicit form of the AUTH_* environment.
type Config struct {
	Secret     string
	Issuer     string
	Audience   string
	Leeway     time.Duration
	TokenTTL   time.Duration
	CookieName string
	AdminRole  string
	DevBypass  bool
}

func New(cfg Config) *Middleware {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Middleware{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		leeway:     cfg.Leeway,
		tokenTTL:   cfg.TokenTTL,
		cookieName: cfg.CookieName,
		adminRole:  cfg.AdminRole,
		devBypass:  cfg.DevBypass,
	}
}

// Enabled reports whether a signing secret is configured.
func (m *Middleware) Enabled() bool { return len(m.secret) > 0 }
