package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/faq-engine/pkg/errors"
)

// Service guards the curation surfaces.
type Service interface {
	Configured() bool
	Authorize(ctx context.Context, password string) error
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	ResolveAddedBy(explicit string, fallbacks ...string) string
}

type service struct {
	cfg    Config
	secret []byte
	logger *slog.Logger
}

const defaultTokenTTL = 12 * time.Hour

// passwordHeaders lists the headers clients use to pass the admin password, in priority order.
var passwordHeaders = []string{"x-user-m-key", "x-user-password", "x-admin-password"}

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	logger = logger.With("component", "admin.service")
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if strings.TrimSpace(cfg.DefaultUser) == "" {
		cfg.DefaultUser = "admin"
	}
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = []byte(randomHex(32))
		logger.Warn("admin jwt secret not configured, sessions will not survive a restart")
	}
	return &service{cfg: cfg, secret: secret, logger: logger}
}

func (s *service) Configured() bool {
	return s.cfg.Password != "" || s.cfg.PasswordHash != ""
}

func (s *service) Authorize(_ context.Context, password string) error {
	if !s.Configured() {
		return apperrors.Wrap(apperrors.CodeAdminUnconfigured, UnconfiguredMessage, nil)
	}
	password = normalizePassword(password)
	if password == "" {
		return apperrors.Wrap(apperrors.CodeUnauthorized, UnauthorizedMessage, nil)
	}
	if s.cfg.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
			s.logger.Warn("admin password rejected")
			return apperrors.Wrap(apperrors.CodeUnauthorized, UnauthorizedMessage, nil)
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) != 1 {
		s.logger.Warn("admin password rejected")
		return apperrors.Wrap(apperrors.CodeUnauthorized, UnauthorizedMessage, nil)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if err := s.Authorize(ctx, req.Password); err != nil {
		return LoginResponse{}, err
	}
	user := s.ResolveAddedBy(req.User)
	now := time.Now()
	expires := now.Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   user,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInternal, "failed to sign token", err)
	}
	s.logger.Info("admin login", "user", user)
	return LoginResponse{Token: signed, ExpiresAt: expires.UTC(), User: user}, nil
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "token missing", nil)
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "token invalid", nil)
	}
	return Claims{User: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ResolveAddedBy picks the first non-blank attribution, falling back to the default admin user.
func (s *service) ResolveAddedBy(explicit string, fallbacks ...string) string {
	for _, candidate := range append([]string{explicit}, fallbacks...) {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return s.cfg.DefaultUser
}

// PasswordFromHeaders reads the admin password from the first populated password header.
// Unexpanded "{{VAR}}" client templates count as missing.
func PasswordFromHeaders(get func(name string) string) string {
	for _, name := range passwordHeaders {
		if v := normalizePassword(get(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizePassword(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.HasPrefix(v, "{{") && strings.HasSuffix(v, "}}") {
		return ""
	}
	return v
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}
