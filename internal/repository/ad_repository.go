package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/tv-ad-booking/internal/model"
)

// AdRepo stores advertiser creatives (metadata and media references only).
type AdRepo struct {
    db *sql.DB
}

func NewAdRepo(db *sql.DB) *AdRepo { return &AdRepo{db: db} }

const adColumns = `id, advertiser_id, advertiser_name, title, description, media_type, media_url, thumbnail_url, status, created_at`

func scanAd(row rowScanner) (*model.Ad, error) {
    var a model.Ad
    if err := row.Scan(&a.ID, &a.AdvertiserID, &a.AdvertiserName, &a.Title, &a.Description,
        &a.MediaType, &a.MediaURL, &a.ThumbnailURL, &a.Status, &a.CreatedAt); err != nil {
        return nil, err
    }
    a.CreatedAt = a.CreatedAt.UTC()
    return &a, nil
}

func (r *AdRepo) Create(ctx context.Context, a *model.Ad) error {
    a.CreatedAt = dbTime(a.CreatedAt)
    _, err := r.db.ExecContext(ctx, `INSERT INTO ads (`+adColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
        a.ID, a.AdvertiserID, a.AdvertiserName, a.Title, a.Description,
        a.MediaType, a.MediaURL, a.ThumbnailURL, a.Status, a.CreatedAt)
    return err
}

func (r *AdRepo) GetByID(ctx context.Context, id string) (*model.Ad, error) {
    a, err := scanAd(r.db.QueryRowContext(ctx, `SELECT `+adColumns+` FROM ads WHERE id = ?`, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return a, err
}

// ListByAdvertiser returns one advertiser's ads, newest first.
func (r *AdRepo) ListByAdvertiser(ctx context.Context, advertiserID uint64) ([]model.Ad, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+adColumns+` FROM ads WHERE advertiser_id = ? ORDER BY created_at DESC, id DESC`, advertiserID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Ad{}
    for rows.Next() {
        a, err := scanAd(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *a)
    }
    return out, rows.Err()
}
