package db

import (
	"context"
	"time"
)

type Client interface {
	Close() error

	CreateBanRecord(ctx context.Context, record *BanRecord) error

	CreateLoginToken(ctx context.Context, token *LoginToken) error
	GetLoginToken(ctx context.Context, token string) (*LoginToken, error)
	GetPendingLoginToken(ctx context.Context, token string, now time.Time) (*LoginToken, error)
	VerifyLoginToken(ctx context.Context, token string, userID int64, username, firstName, credential string, verifiedAt time.Time) (bool, error)
	ExpireLoginToken(ctx context.Context, token string) error
	ConsumeLoginToken(ctx context.Context, token string) (bool, error)
	GetTokenBySessionCredential(ctx context.Context, credential string) (*LoginToken, error)
	ClearSessionCredential(ctx context.Context, credential string) (bool, error)
	DeleteStaleLoginTokens(ctx context.Context, now time.Time, retention time.Duration) (int64, error)

	AppendAuditLog(ctx context.Context, entry *AuditEntry) error
}
