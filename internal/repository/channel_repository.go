package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/tv-ad-booking/internal/model"
)

// ChannelRepo stores the broadcasters slots are sold on.
type ChannelRepo struct {
    db *sql.DB
}

func NewChannelRepo(db *sql.DB) *ChannelRepo { return &ChannelRepo{db: db} }

const channelColumns = `id, name, description, category, average_viewership, created_at`

func scanChannel(row rowScanner) (*model.Channel, error) {
    var ch model.Channel
    if err := row.Scan(&ch.ID, &ch.Name, &ch.Description, &ch.Category, &ch.AverageViewership, &ch.CreatedAt); err != nil {
        return nil, err
    }
    ch.CreatedAt = ch.CreatedAt.UTC()
    return &ch, nil
}

// Create inserts a channel.  A duplicate name yields ErrConflict.
func (r *ChannelRepo) Create(ctx context.Context, ch *model.Channel) error {
    ch.CreatedAt = dbTime(ch.CreatedAt)
    _, err := r.db.ExecContext(ctx, `INSERT INTO channels (`+channelColumns+`) VALUES (?,?,?,?,?,?)`,
        ch.ID, ch.Name, ch.Description, ch.Category, ch.AverageViewership, ch.CreatedAt)
    if IsDuplicate(err) {
        return ErrConflict
    }
    return err
}

func (r *ChannelRepo) GetByID(ctx context.Context, id string) (*model.Channel, error) {
    ch, err := scanChannel(r.db.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return ch, err
}

// List returns all channels by name.
func (r *ChannelRepo) List(ctx context.Context) ([]model.Channel, error) {
    rows, err := r.db.QueryContext(ctx, `SELECT `+channelColumns+` FROM channels ORDER BY name ASC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Channel{}
    for rows.Next() {
        ch, err := scanChannel(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *ch)
    }
    return out, rows.Err()
}
