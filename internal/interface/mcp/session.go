package mcp

import (
	"context"
	"strings"

	"github.com/yanqian/faq-engine/internal/domain/admin"
)

// session is what the transport learned about the caller from request headers.
type session struct {
	Password string
	User     string
}

type sessionKey struct{}

func withSession(ctx context.Context, s session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFrom(ctx context.Context) session {
	s, _ := ctx.Value(sessionKey{}).(session)
	return s
}

func sessionFromHeaders(get func(string) string) session {
	s := session{Password: admin.PasswordFromHeaders(get)}
	for _, name := range []string{"x-user-name", "x-user-email", "x-user-id"} {
		if v := strings.TrimSpace(get(name)); v != "" && !strings.HasPrefix(v, "{{") {
			s.User = v
			break
		}
	}
	return s
}
