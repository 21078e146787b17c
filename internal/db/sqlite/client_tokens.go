package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/voxchat/voxbot/internal/errors"

	"github.com/voxchat/voxbot/internal/db"
)

func (s *sqliteClient) CreateLoginToken(ctx context.Context, token *db.LoginToken) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO login_tokens (token, status, request_source, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		token.Token,
		token.Status,
		token.RequestSource,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: login token value collision", apperrors.ErrIntegrity)
		}
		return fmt.Errorf("failed to create login token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read login token id: %w", err)
	}
	token.ID = id
	return nil
}

func (s *sqliteClient) GetLoginToken(ctx context.Context, token string) (*db.LoginToken, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var record db.LoginToken
	err := s.db.GetContext(ctx, &record, `SELECT * FROM login_tokens WHERE token = ?`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get login token: %w", err)
	}
	return &record, nil
}

func (s *sqliteClient) GetPendingLoginToken(ctx context.Context, token string, now time.Time) (*db.LoginToken, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var record db.LoginToken
	err := s.db.GetContext(ctx, &record, `
		SELECT * FROM login_tokens
		WHERE token = ? AND status = ? AND expires_at > ?
	`, token, db.TokenStatusPending, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending login token: %w", err)
	}
	return &record, nil
}

// VerifyLoginToken flips a still-pending unexpired token to verified and
// stamps the verifier identity and freshly minted session credential on it.
// The status filter makes the transition a conditional single-row update,
// the returned bool reports whether this caller won it.
func (s *sqliteClient) VerifyLoginToken(ctx context.Context, token string, userID int64, username, firstName, credential string, verifiedAt time.Time) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		UPDATE login_tokens
		SET status = ?,
			user_id = ?,
			username = ?,
			first_name = ?,
			session_credential = ?,
			verified_at = ?
		WHERE token = ? AND status = ? AND expires_at > ?
	`
	result, err := s.db.ExecContext(ctx, query,
		db.TokenStatusVerified,
		userID,
		username,
		firstName,
		credential,
		verifiedAt,
		token,
		db.TokenStatusPending,
		verifiedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to verify login token: %w", err)
	}
	return affected(result)
}

func (s *sqliteClient) ExpireLoginToken(ctx context.Context, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		UPDATE login_tokens
		SET status = ?
		WHERE token = ? AND status IN (?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		db.TokenStatusExpired,
		token,
		db.TokenStatusPending,
		db.TokenStatusVerified,
	)
	if err != nil {
		return fmt.Errorf("failed to expire login token: %w", err)
	}
	return nil
}

// ConsumeLoginToken claims the verified token for exactly one poller by
// flipping it to used. Two concurrent pollers race on the status filter, only
// one sees an affected row.
func (s *sqliteClient) ConsumeLoginToken(ctx context.Context, token string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		UPDATE login_tokens
		SET status = ?
		WHERE token = ? AND status = ? AND session_credential IS NOT NULL
	`
	result, err := s.db.ExecContext(ctx, query,
		db.TokenStatusUsed,
		token,
		db.TokenStatusVerified,
	)
	if err != nil {
		return false, fmt.Errorf("failed to consume login token: %w", err)
	}
	return affected(result)
}

func (s *sqliteClient) GetTokenBySessionCredential(ctx context.Context, credential string) (*db.LoginToken, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var record db.LoginToken
	err := s.db.GetContext(ctx, &record, `SELECT * FROM login_tokens WHERE session_credential = ?`, credential)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token by session credential: %w", err)
	}
	return &record, nil
}

func (s *sqliteClient) ClearSessionCredential(ctx context.Context, credential string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		UPDATE login_tokens
		SET session_credential = NULL, status = ?
		WHERE session_credential = ?
	`
	result, err := s.db.ExecContext(ctx, query, db.TokenStatusExpired, credential)
	if err != nil {
		return false, fmt.Errorf("failed to clear session credential: %w", err)
	}
	return affected(result)
}

func (s *sqliteClient) DeleteStaleLoginTokens(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := now.Add(-retention)
	query := `
		DELETE FROM login_tokens
		WHERE (status = ? AND expires_at <= ?)
		   OR (status = ? AND created_at <= ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		db.TokenStatusPending,
		now,
		db.TokenStatusExpired,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale login tokens: %w", err)
	}
	return result.RowsAffected()
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
