package auth

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// ProvideAuthentication wires defaults and env config.
func ProvideAuthentication() *Middleware {
	return New(Config{
		Secret:     os.Getenv("AUTH_JWT_SECRET"),
		Issuer:     strings.TrimSpace(os.Getenv("AUTH_JWT_ISSUER")),
		Audience:   strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		Leeway:     envSeconds("ASSERTION_LEEWAY_SECONDS", 60*time.Second),
		TokenTTL:   envSeconds("AUTH_TOKEN_TTL_SECONDS", 24*time.Hour),
		CookieName: strings.TrimSpace(os.Getenv("SESSION_COOKIE_NAME")),
		AdminRole:  os.Getenv("ADMIN_ROLE_NAME"),
		DevBypass:  os.Getenv("AUTH_DEV_BYPASS") == "true",
	})
}

func envSeconds(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)
