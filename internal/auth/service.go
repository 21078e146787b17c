package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/voxchat/voxbot/internal/config"
	"github.com/voxchat/voxbot/internal/db"
	apperrors "github.com/voxchat/voxbot/internal/errors"
	"github.com/voxchat/voxbot/internal/observability"
)

type tokenStore interface {
	CreateLoginToken(ctx context.Context, token *db.LoginToken) error
	GetLoginToken(ctx context.Context, token string) (*db.LoginToken, error)
	GetPendingLoginToken(ctx context.Context, token string, now time.Time) (*db.LoginToken, error)
	VerifyLoginToken(ctx context.Context, token string, userID int64, username, firstName, credential string, verifiedAt time.Time) (bool, error)
	ExpireLoginToken(ctx context.Context, token string) error
	ConsumeLoginToken(ctx context.Context, token string) (bool, error)
	GetTokenBySessionCredential(ctx context.Context, credential string) (*db.LoginToken, error)
	ClearSessionCredential(ctx context.Context, credential string) (bool, error)
	AppendAuditLog(ctx context.Context, entry *db.AuditEntry) error
}

type (
	LoginGrant struct {
		Token     string
		ExpiresAt time.Time
	}

	// VerifierIdentity is supplied by the chat bot when an admin runs
	// /verify <token> in a private chat.
	VerifierIdentity struct {
		ID        int64
		Username  string
		FirstName string
	}

	VerifiedLogin struct {
		SessionCredential string
		UserID            int64
		Username          string
		FirstName         string
	}

	StatusSnapshot struct {
		Status            db.TokenStatus
		SessionCredential string
		UserID            int64
		Username          string
		FirstName         string
	}

	SessionInfo struct {
		UserID     int64
		Username   string
		FirstName  string
		VerifiedAt time.Time
	}
)

// Service manages the login-token handshake and session validation. Unlike
// the moderation ledger it fails closed: any store error denies access.
type Service struct {
	store tokenStore
	cfg   config.Auth
	nowFn func() time.Time
}

func NewService(store tokenStore, cfg config.Auth) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 5 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Service{
		store: store,
		cfg:   cfg,
		nowFn: time.Now,
	}
}

// GenerateLoginToken opens a pending handshake. A unique-constraint collision
// on the token value surfaces as ErrIntegrity, the caller retries with a
// fresh request.
func (s *Service) GenerateLoginToken(ctx context.Context, requestSource string) (*LoginGrant, error) {
	secret, err := newSecret()
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	record := &db.LoginToken{
		Token:         secret,
		Status:        db.TokenStatusPending,
		RequestSource: requestSource,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.TokenTTL),
	}
	if err := s.store.CreateLoginToken(ctx, record); err != nil {
		return nil, fmt.Errorf("create login token: %w", err)
	}

	observability.LoginEventsTotal.WithLabelValues("issued").Inc()
	return &LoginGrant{Token: secret, ExpiresAt: record.ExpiresAt}, nil
}

// VerifyToken is called with the identity of whoever sent the token to the
// bot. A verifier outside the admin set burns the token, a rejected
// handshake is never retryable with the same token.
func (s *Service) VerifyToken(ctx context.Context, token string, identity VerifierIdentity, allowedAdminIDs []string) (*VerifiedLogin, error) {
	now := s.nowFn()
	record, err := s.store.GetPendingLoginToken(ctx, token, now)
	if err != nil {
		return nil, fmt.Errorf("lookup login token: %w", err)
	}
	if record == nil {
		observability.LoginEventsTotal.WithLabelValues("not_found").Inc()
		return nil, apperrors.ErrNotFound
	}

	actor := strconv.FormatInt(identity.ID, 10)
	if !containsID(allowedAdminIDs, actor) {
		if expireErr := s.store.ExpireLoginToken(ctx, token); expireErr != nil {
			s.getLogEntry().WithError(expireErr).Error("failed to burn rejected login token")
		}
		s.audit(ctx, "verify_denied", actor, shortToken(token), identity.Username)
		observability.LoginEventsTotal.WithLabelValues("denied").Inc()
		return nil, apperrors.ErrUnauthorized
	}

	credential, err := newSecret()
	if err != nil {
		return nil, err
	}
	ok, err := s.store.VerifyLoginToken(ctx, token, identity.ID, identity.Username, identity.FirstName, credential, now)
	if err != nil {
		return nil, fmt.Errorf("verify login token: %w", err)
	}
	if !ok {
		// expired or claimed between lookup and update
		observability.LoginEventsTotal.WithLabelValues("not_found").Inc()
		return nil, apperrors.ErrNotFound
	}

	s.audit(ctx, "verify_ok", actor, shortToken(token), identity.Username)
	observability.LoginEventsTotal.WithLabelValues("verified").Inc()
	return &VerifiedLogin{
		SessionCredential: credential,
		UserID:            identity.ID,
		Username:          identity.Username,
		FirstName:         identity.FirstName,
	}, nil
}

// CheckTokenStatus serves the web client's polling loop. The session
// credential is delivered on exactly one poll: the first caller to claim the
// verified record gets it, everyone after sees the used status without it.
func (s *Service) CheckTokenStatus(ctx context.Context, token string) (*StatusSnapshot, error) {
	record, err := s.store.GetLoginToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("lookup login token: %w", err)
	}
	if record == nil {
		return nil, apperrors.ErrNotFound
	}

	now := s.nowFn()
	switch record.Status {
	case db.TokenStatusPending, db.TokenStatusVerified:
		if !record.ExpiresAt.After(now) {
			if expireErr := s.store.ExpireLoginToken(ctx, token); expireErr != nil {
				s.getLogEntry().WithError(expireErr).Error("failed to lazily expire login token")
			}
			return &StatusSnapshot{Status: db.TokenStatusExpired}, nil
		}
	}

	if record.Status == db.TokenStatusVerified && record.SessionCredential != nil {
		claimed, err := s.store.ConsumeLoginToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("consume login token: %w", err)
		}
		if claimed {
			observability.LoginEventsTotal.WithLabelValues("delivered").Inc()
			return &StatusSnapshot{
				Status:            db.TokenStatusUsed,
				SessionCredential: *record.SessionCredential,
				UserID:            derefInt64(record.UserID),
				Username:          record.Username,
				FirstName:         record.FirstName,
			}, nil
		}
		// a concurrent poller claimed it first
		return &StatusSnapshot{Status: db.TokenStatusUsed}, nil
	}

	return &StatusSnapshot{Status: record.Status}, nil
}

// ValidateSession authorizes a request bearing a session credential. Valid
// only for consumed tokens within the session window.
func (s *Service) ValidateSession(ctx context.Context, credential string) (*SessionInfo, error) {
	if credential == "" {
		return nil, apperrors.ErrUnauthorized
	}
	record, err := s.store.GetTokenBySessionCredential(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("lookup session credential: %w", err)
	}
	if record == nil || record.Status != db.TokenStatusUsed || record.VerifiedAt == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if s.nowFn().Sub(*record.VerifiedAt) > s.cfg.SessionTTL {
		return nil, apperrors.ErrUnauthorized
	}
	return &SessionInfo{
		UserID:     derefInt64(record.UserID),
		Username:   record.Username,
		FirstName:  record.FirstName,
		VerifiedAt: *record.VerifiedAt,
	}, nil
}

// InvalidateSession logs the admin out. Repeat invalidations of an already
// cleared credential are a no-op success.
func (s *Service) InvalidateSession(ctx context.Context, credential string) error {
	if credential == "" {
		return nil
	}
	cleared, err := s.store.ClearSessionCredential(ctx, credential)
	if err != nil {
		return fmt.Errorf("clear session credential: %w", err)
	}
	if cleared {
		s.audit(ctx, "logout", "", shortToken(credential), "")
		observability.LoginEventsTotal.WithLabelValues("logout").Inc()
	}
	return nil
}

func (s *Service) audit(ctx context.Context, action, actor, target, detail string) {
	entry := &db.AuditEntry{
		ID:        uuid.NewString(),
		Category:  "auth",
		Action:    action,
		Actor:     actor,
		Target:    target,
		Detail:    detail,
		CreatedAt: s.nowFn(),
	}
	if err := s.store.AppendAuditLog(ctx, entry); err != nil {
		s.getLogEntry().WithError(err).WithField("action", action).Error("failed to append audit log")
	}
}

func (s *Service) getLogEntry() *log.Entry {
	return log.WithField("object", "AuthService")
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
