package sqlite

import (
	"context"
	"fmt"

	"github.com/voxchat/voxbot/internal/db"
)

func (s *sqliteClient) CreateBanRecord(ctx context.Context, record *db.BanRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO ban_records (user_id, reason, created_at)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, record.UserID, record.Reason, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ban record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read ban record id: %w", err)
	}
	record.ID = id
	return nil
}

func (s *sqliteClient) AppendAuditLog(ctx context.Context, entry *db.AuditEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	query := `
		INSERT INTO audit_log (id, category, action, actor, target, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Category,
		entry.Action,
		entry.Actor,
		entry.Target,
		entry.Detail,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}
