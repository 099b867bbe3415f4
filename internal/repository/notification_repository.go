package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/tv-ad-booking/internal/model"
)

// NotificationRepo stores per-user inbox entries.  The read flag only ever
// moves from false to true; no statement in this file clears it.
type NotificationRepo struct {
    db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationColumns = `id, user_id, title, message, category, is_read, target_id, created_at`

func scanNotification(row rowScanner) (*model.Notification, error) {
    var n model.Notification
    var category string
    var target sql.NullString
    if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &category, &n.Read, &target, &n.CreatedAt); err != nil {
        return nil, err
    }
    n.Category = model.NotificationCategory(category)
    if target.Valid && target.String != "" {
        t := target.String
        n.TargetID = &t
    }
    n.CreatedAt = n.CreatedAt.UTC()
    return &n, nil
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
    n.CreatedAt = dbTime(n.CreatedAt)
    var target any
    if n.TargetID != nil {
        target = *n.TargetID
    }
    _, err := r.db.ExecContext(ctx,
        `INSERT INTO notifications (`+notificationColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
        n.ID, n.UserID, n.Title, n.Message, string(n.Category), n.Read, target, n.CreatedAt)
    return err
}

// GetByID returns the notification or ErrNotFound.
func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
    n, err := scanNotification(r.db.QueryRowContext(ctx,
        `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return n, err
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
    return listNotifications(ctx, r.db, userID)
}

type querier interface {
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listNotifications(ctx context.Context, q querier, userID uint64) ([]model.Notification, error) {
    rows, err := q.QueryContext(ctx,
        `SELECT `+notificationColumns+` FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Notification{}
    for rows.Next() {
        n, err := scanNotification(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *n)
    }
    return out, rows.Err()
}

// MarkRead sets the read flag on one notification owned by userID.  Marking
// an already read notification is a no-op.  A notification owned by someone
// else yields ErrForbidden.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string, userID uint64) (*model.Notification, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`, true, id, userID)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    cur, err := r.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if n == 0 || cur.UserID != userID {
        return nil, ErrForbidden
    }
    return cur, nil
}

// MarkAllRead flags every unread notification of userID and returns the
// resulting inbox.  The update and the read run in one transaction so the
// returned list reflects the update.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) ([]model.Notification, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if _, err := tx.ExecContext(ctx,
        `UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`, true, userID, false); err != nil {
        return nil, err
    }
    list, err := listNotifications(ctx, tx, userID)
    if err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return list, nil
}

// CountUnread returns how many unread notifications userID has.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`, userID, false).Scan(&n)
    return n, err
}
