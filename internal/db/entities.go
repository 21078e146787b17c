package db

import (
	"time"
)

type TokenStatus string

const (
	TokenStatusPending  TokenStatus = "pending"
	TokenStatusVerified TokenStatus = "verified"
	TokenStatusExpired  TokenStatus = "expired"
	TokenStatusUsed     TokenStatus = "used"
)

type (
	// LoginToken is the short-lived handshake record between the web client
	// and the out-of-band verifier. Status only ever moves forward:
	// pending->verified->used, pending->expired, verified->expired.
	LoginToken struct {
		ID                int64       `db:"id"`
		Token             string      `db:"token"`
		UserID            *int64      `db:"user_id"`
		Username          string      `db:"username"`
		FirstName         string      `db:"first_name"`
		Status            TokenStatus `db:"status"`
		RequestSource     string      `db:"request_source"`
		SessionCredential *string     `db:"session_credential"`
		CreatedAt         time.Time   `db:"created_at"`
		ExpiresAt         time.Time   `db:"expires_at"`
		VerifiedAt        *time.Time  `db:"verified_at"`
	}

	// BanRecord is the append-only audit copy of a temporary ban. Enforcement
	// lives in the ledger, this record is never updated or deleted.
	BanRecord struct {
		ID        int64     `db:"id"`
		UserID    int64     `db:"user_id"`
		Reason    string    `db:"reason"`
		CreatedAt time.Time `db:"created_at"`
	}

	AuditEntry struct {
		ID        string    `db:"id"`
		Category  string    `db:"category"`
		Action    string    `db:"action"`
		Actor     string    `db:"actor"`
		Target    string    `db:"target"`
		Detail    string    `db:"detail"`
		CreatedAt time.Time `db:"created_at"`
	}
)
