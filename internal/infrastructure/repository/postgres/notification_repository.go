package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/medguard/internal/core/domain"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin notification tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO notifications (id, user_id, type, title, message, is_read, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.IsRead, n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO notification_recipients (user_id) VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
`, n.UserID); err != nil {
		return fmt.Errorf("register recipient: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notification tx: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, type, title, message, is_read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = domain.NotificationType(kind)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE notifications
SET is_read = TRUE
WHERE id = $1 AND user_id = $2
`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "mark notification read", fmt.Errorf("notification %s", id))
	}
	return nil
}

func (r *NotificationRepository) ClearAll(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListRecipients(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id
FROM notification_recipients
ORDER BY first_seen_at, user_id
`)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipients: %w", err)
	}
	return out, nil
}
