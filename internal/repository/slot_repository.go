package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/tv-ad-booking/internal/model"
)

// SlotRepo persists advertising slots in the ad_slots table.  Status
// changes go through CompareAndSetStatus so that two concurrent writers can
// never both move a slot out of the same state.
type SlotRepo struct {
    db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotColumns = `id, title, description, channel_id, channel_name, start_time, end_time,
    duration_seconds, price_cents, estimated_viewers, status, created_by, created_at, updated_at`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*model.Slot, error) {
    var s model.Slot
    var status string
    err := row.Scan(&s.ID, &s.Title, &s.Description, &s.ChannelID, &s.ChannelName,
        &s.StartTime, &s.EndTime, &s.DurationSeconds, &s.PriceCents, &s.EstimatedViewers,
        &status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return nil, err
    }
    s.Status = model.SlotStatus(status)
    s.StartTime = s.StartTime.UTC()
    s.EndTime = s.EndTime.UTC()
    s.CreatedAt = s.CreatedAt.UTC()
    s.UpdatedAt = s.UpdatedAt.UTC()
    return &s, nil
}

// Create inserts a new slot.  The caller assigns the ID and timestamps.
func (r *SlotRepo) Create(ctx context.Context, s *model.Slot) error {
    s.StartTime, s.EndTime = dbTime(s.StartTime), dbTime(s.EndTime)
    s.CreatedAt, s.UpdatedAt = dbTime(s.CreatedAt), dbTime(s.UpdatedAt)
    const q = `INSERT INTO ad_slots (` + slotColumns + `) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
    _, err := r.db.ExecContext(ctx, q,
        s.ID, s.Title, s.Description, s.ChannelID, s.ChannelName, s.StartTime, s.EndTime,
        s.DurationSeconds, s.PriceCents, s.EstimatedViewers, string(s.Status), s.CreatedBy,
        s.CreatedAt, s.UpdatedAt)
    if IsDuplicate(err) {
        return ErrConflict
    }
    return err
}

// GetByID returns the slot or ErrNotFound.
func (r *SlotRepo) GetByID(ctx context.Context, id string) (*model.Slot, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM ad_slots WHERE id = ?`, id)
    s, err := scanSlot(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return s, err
}

// ListByStatus returns slots in the given state ordered by start time.
func (r *SlotRepo) ListByStatus(ctx context.Context, status model.SlotStatus) ([]model.Slot, error) {
    return r.list(ctx, `SELECT `+slotColumns+` FROM ad_slots WHERE status = ? ORDER BY start_time ASC, id ASC`, string(status))
}

// ListAll returns every slot ordered by start time.
func (r *SlotRepo) ListAll(ctx context.Context) ([]model.Slot, error) {
    return r.list(ctx, `SELECT `+slotColumns+` FROM ad_slots ORDER BY start_time ASC, id ASC`)
}

func (r *SlotRepo) list(ctx context.Context, q string, args ...any) ([]model.Slot, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Slot{}
    for rows.Next() {
        s, err := scanSlot(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *s)
    }
    return out, rows.Err()
}

// CompareAndSetStatus moves the slot to `to` only if its current status is
// one of `from`.  The check and the write are a single UPDATE statement.
// When no row matches, the slot is re-read to tell ErrNotFound apart from
// ErrConflict.  The returned row comes from a separate read and may already
// show a later transition; only the error reports what this call did.
func (r *SlotRepo) CompareAndSetStatus(ctx context.Context, id string, to model.SlotStatus, at time.Time, from ...model.SlotStatus) (*model.Slot, error) {
    if len(from) == 0 {
        return nil, errors.New("compare-and-set: no source states")
    }
    args := []any{string(to), dbTime(at), id}
    for _, f := range from {
        args = append(args, string(f))
    }
    q := `UPDATE ad_slots SET status = ?, updated_at = ? WHERE id = ? AND status IN (` + placeholders(len(from)) + `)`
    res, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    cur, gerr := r.GetByID(ctx, id)
    if gerr != nil {
        return nil, gerr
    }
    if n == 0 {
        return cur, ErrConflict
    }
    return cur, nil
}

// UpdateDetails rewrites the descriptive fields of a slot that is still
// available.  Booked or expired slots are frozen and yield ErrConflict.
func (r *SlotRepo) UpdateDetails(ctx context.Context, s *model.Slot) error {
    s.StartTime, s.EndTime, s.UpdatedAt = dbTime(s.StartTime), dbTime(s.EndTime), dbTime(s.UpdatedAt)
    const q = `UPDATE ad_slots SET title = ?, description = ?, channel_id = ?, channel_name = ?,
        start_time = ?, end_time = ?, duration_seconds = ?, price_cents = ?, estimated_viewers = ?, updated_at = ?
        WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q,
        s.Title, s.Description, s.ChannelID, s.ChannelName, s.StartTime, s.EndTime,
        s.DurationSeconds, s.PriceCents, s.EstimatedViewers, s.UpdatedAt,
        s.ID, string(model.SlotAvailable))
    if err != nil {
        return err
    }
    return r.matchedOrExplain(ctx, res, s.ID)
}

// Delete removes an available slot that no booking references.
func (r *SlotRepo) Delete(ctx context.Context, id string) error {
    const q = `DELETE FROM ad_slots WHERE id = ? AND status = ?
        AND NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = ?)`
    res, err := r.db.ExecContext(ctx, q, id, string(model.SlotAvailable), id)
    if err != nil {
        return err
    }
    return r.matchedOrExplain(ctx, res, id)
}

func (r *SlotRepo) matchedOrExplain(ctx context.Context, res sql.Result, id string) error {
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n > 0 {
        return nil
    }
    if _, err := r.GetByID(ctx, id); err != nil {
        return err
    }
    return ErrConflict
}

// CountByStatus returns how many slots are in each state.
func (r *SlotRepo) CountByStatus(ctx context.Context) (map[model.SlotStatus]int64, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM ad_slots GROUP BY status`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := map[model.SlotStatus]int64{}
    for rows.Next() {
        var st string
        var n int64
        if err := rows.Scan(&st, &n); err != nil {
            return nil, err
        }
        out[model.SlotStatus(st)] = n
    }
    return out, rows.Err()
}
