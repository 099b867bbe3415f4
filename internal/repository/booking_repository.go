package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/tv-ad-booking/internal/model"
)

// BookingRepo persists booking requests.  Each row carries a snapshot of
// the slot's display fields as they were at submission time.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, slot_id, advertiser_id, advertiser_name, ad_id, ad_title, ad_description, status,
    snap_title, snap_channel_name, snap_start_time, snap_end_time, snap_duration_seconds, snap_price_cents,
    created_at, updated_at`

func scanBooking(row rowScanner) (*model.Booking, error) {
    var b model.Booking
    var status string
    var adID sql.NullString
    err := row.Scan(&b.ID, &b.SlotID, &b.AdvertiserID, &b.AdvertiserName, &adID, &b.AdTitle, &b.AdDescription, &status,
        &b.Slot.Title, &b.Slot.ChannelName, &b.Slot.StartTime, &b.Slot.EndTime, &b.Slot.DurationSeconds, &b.Slot.PriceCents,
        &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return nil, err
    }
    b.Status = model.BookingStatus(status)
    if adID.Valid && adID.String != "" {
        id := adID.String
        b.AdID = &id
    }
    b.Slot.StartTime = b.Slot.StartTime.UTC()
    b.Slot.EndTime = b.Slot.EndTime.UTC()
    b.CreatedAt = b.CreatedAt.UTC()
    b.UpdatedAt = b.UpdatedAt.UTC()
    return &b, nil
}

// Create inserts a booking.  The caller assigns the ID, status and timestamps.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    b.CreatedAt, b.UpdatedAt = dbTime(b.CreatedAt), dbTime(b.UpdatedAt)
    b.Slot.StartTime, b.Slot.EndTime = dbTime(b.Slot.StartTime), dbTime(b.Slot.EndTime)
    var adID any
    if b.AdID != nil {
        adID = *b.AdID
    }
    const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
    _, err := r.db.ExecContext(ctx, q,
        b.ID, b.SlotID, b.AdvertiserID, b.AdvertiserName, adID, b.AdTitle, b.AdDescription, string(b.Status),
        b.Slot.Title, b.Slot.ChannelName, b.Slot.StartTime, b.Slot.EndTime, b.Slot.DurationSeconds, b.Slot.PriceCents,
        b.CreatedAt, b.UpdatedAt)
    if IsDuplicate(err) {
        return ErrConflict
    }
    return err
}

// GetByID returns the booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
    b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return b, err
}

// ListByAdvertiser returns one advertiser's bookings, newest first.
func (r *BookingRepo) ListByAdvertiser(ctx context.Context, advertiserID uint64) ([]model.Booking, error) {
    return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE advertiser_id = ? ORDER BY created_at DESC, id DESC`, advertiserID)
}

// ListByStatus returns bookings in one state, newest first.
func (r *BookingRepo) ListByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error) {
    return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status = ? ORDER BY created_at DESC, id DESC`, string(status))
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
    return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Booking{}
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

// CompareAndSetStatus moves the booking to `to` only if its current status
// is `from`.  Zero matched rows yields ErrNotFound or ErrConflict.  The
// returned row is read after the write and may already show a later
// transition; only the error reports what this call did.
func (r *BookingRepo) CompareAndSetStatus(ctx context.Context, id string, to model.BookingStatus, at time.Time, from model.BookingStatus) (*model.Booking, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
        string(to), dbTime(at), id, string(from))
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

// StatusTotals is one row of the booking summary.
type StatusTotals struct {
    Count      int64
    PriceCents int64
}

// TotalsByStatus counts bookings and sums their snapshot prices per state.
func (r *BookingRepo) TotalsByStatus(ctx context.Context) (map[model.BookingStatus]StatusTotals, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT status, COUNT(*), COALESCE(SUM(snap_price_cents), 0) FROM bookings GROUP BY status`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := map[model.BookingStatus]StatusTotals{}
    for rows.Next() {
        var st string
        var t StatusTotals
        if err := rows.Scan(&st, &t.Count, &t.PriceCents); err != nil {
            return nil, err
        }
        out[model.BookingStatus(st)] = t
    }
    return out, rows.Err()
}
