package requestlog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/requestlog"
	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

const (
	defaultStatsWindow = 24 * time.Hour
	defaultTopRoutes   = 10
	maxTopRoutes       = 100
)

// Admin API errors
var (
	ErrInvalidCredentials = shared.NewDomainErrorWithStatus(http.StatusUnauthorized, shared.CodeUnauthorized, "Invalid username or password.")
	ErrInvalidSince       = shared.Invalid(`The "since" parameter must be an RFC 3339 timestamp or a duration such as "24h".`)
	ErrRequestNotFound    = shared.NewDomainErrorWithStatus(http.StatusNotFound, shared.CodeNotFound, "Request not found.")
)

// TokenIssuer issues admin access tokens
type TokenIssuer interface {
	Issue(username string) (*auth.Token, error)
}

// Authenticator checks admin credentials
type Authenticator interface {
	Authenticate(username, password string) error
}

// AdminService serves the request log administration API
type AdminService struct {
	repo      requestlog.Repository
	authn     Authenticator
	tokens    TokenIssuer
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(
	repo requestlog.Repository,
	authn Authenticator,
	tokens TokenIssuer,
	blacklist auth.TokenBlacklist,
	l *zap.Logger,
) *AdminService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AdminService{
		repo:      repo,
		authn:     authn,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    l.Named("admin"),
		now:       time.Now,
	}
}

// Login checks the credentials and issues an access token
func (s *AdminService) Login(ctx context.Context, req LoginRequest) (*auth.Token, error) {
	if err := s.authn.Authenticate(req.Username, req.Password); err != nil {
		s.logger.Warn("Admin login failed", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Admin logged in", zap.String("username", req.Username))
	return token, nil
}

// Logout revokes the token for the rest of its lifetime
func (s *AdminService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresIn(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}

// Stats aggregates the requests recorded since the given point in time
func (s *AdminService) Stats(ctx context.Context, req StatsRequest) (*StatsResponse, error) {
	since, err := s.parseSince(req.Since)
	if err != nil {
		return nil, err
	}
	top := req.Top
	if top <= 0 {
		top = defaultTopRoutes
	}
	top = min(top, maxTopRoutes)

	stats, err := s.repo.Stats(ctx, since, top)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{Stats: stats, SuccessRate: stats.SuccessRate()}, nil
}

// Request loads a recorded request with its status history and exceptions
func (s *AdminService) Request(ctx context.Context, id int64) (*requestlog.Request, error) {
	req, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, requestlog.ErrRequestNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// parseSince accepts an RFC 3339 timestamp or a look-back duration
func (s *AdminService) parseSince(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().Add(-defaultStatsWindow).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return time.Time{}, ErrInvalidSince
	}
	return s.now().Add(-d).UTC(), nil
}
