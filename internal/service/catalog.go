package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/tv-ad-booking/internal/model"
)

// Catalog manages channels and advertiser creatives.  Creatives are stored
// by reference; the media itself lives in external asset storage.
type Catalog struct {
	channels ChannelStore
	ads      AdStore
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
}

func NewCatalog(channels ChannelStore, ads AdStore, now func() time.Time, newID func() string, logger *slog.Logger) *Catalog {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Catalog{channels: channels, ads: ads, now: now, newID: newID, logger: defaultLogger(logger)}
}

// ChannelInput describes a new channel.
type ChannelInput struct {
	Name              string
	Description       string
	Category          string
	AverageViewership int64
}

// CreateChannel stores a channel.  Names are unique (ErrConflict).
func (c *Catalog) CreateChannel(ctx context.Context, in ChannelInput) (*model.Channel, error) {
	fe := fieldErrors{}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		fe.add("name", "is required")
	}
	if in.AverageViewership < 0 {
		fe.add("average_viewership", "must not be negative")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	ch := &model.Channel{
		ID:                c.newID(),
		Name:              in.Name,
		Description:       strings.TrimSpace(in.Description),
		Category:          strings.TrimSpace(in.Category),
		AverageViewership: in.AverageViewership,
		CreatedAt:         c.now().UTC(),
	}
	if err := c.channels.Create(ctx, ch); err != nil {
		return nil, storeErr(err)
	}
	serviceLogger(ctx, c.logger, "catalog", "create_channel").Info("channel created", "channel_id", ch.ID)
	return ch, nil
}

// ListChannels returns all channels by name.
func (c *Catalog) ListChannels(ctx context.Context) ([]model.Channel, error) {
	list, err := c.channels.List(ctx)
	return list, storeErr(err)
}

// AdInput describes a creative an advertiser has uploaded elsewhere.
type AdInput struct {
	AdvertiserID   uint64
	AdvertiserName string
	Title          string
	Description    string
	MediaType      string
	MediaURL       string
	ThumbnailURL   string
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CreateAd records a creative reference.  New creatives start pending.
func (c *Catalog) CreateAd(ctx context.Context, in AdInput) (*model.Ad, error) {
	fe := fieldErrors{}
	in.Title = strings.TrimSpace(in.Title)
	in.MediaType = strings.ToLower(strings.TrimSpace(in.MediaType))
	in.MediaURL = strings.TrimSpace(in.MediaURL)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	if in.AdvertiserID == 0 {
		fe.add("advertiser_id", "is required")
	}
	if in.Title == "" {
		fe.add("title", "is required")
	}
	if in.MediaType != model.AdMediaImage && in.MediaType != model.AdMediaVideo {
		fe.add("media_type", "must be image or video")
	}
	if !validURL(in.MediaURL) {
		fe.add("media_url", "must be an http(s) URL")
	}
	if in.ThumbnailURL != "" && !validURL(in.ThumbnailURL) {
		fe.add("thumbnail_url", "must be an http(s) URL")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	ad := &model.Ad{
		ID:             c.newID(),
		AdvertiserID:   in.AdvertiserID,
		AdvertiserName: strings.TrimSpace(in.AdvertiserName),
		Title:          in.Title,
		Description:    strings.TrimSpace(in.Description),
		MediaType:      in.MediaType,
		MediaURL:       in.MediaURL,
		ThumbnailURL:   in.ThumbnailURL,
		Status:         model.AdStatusPending,
		CreatedAt:      c.now().UTC(),
	}
	if err := c.ads.Create(ctx, ad); err != nil {
		return nil, storeErr(err)
	}
	return ad, nil
}

// ListAds returns an advertiser's creatives, newest first.
func (c *Catalog) ListAds(ctx context.Context, advertiserID uint64) ([]model.Ad, error) {
	list, err := c.ads.ListByAdvertiser(ctx, advertiserID)
	return list, storeErr(err)
}

// OwnedAd returns the ad if it belongs to advertiserID.
func (c *Catalog) OwnedAd(ctx context.Context, adID string, advertiserID uint64) (*model.Ad, error) {
	ad, err := c.ads.GetByID(ctx, strings.TrimSpace(adID))
	if err != nil {
		return nil, storeErr(err)
	}
	if ad.AdvertiserID != advertiserID {
		return nil, ErrForbidden
	}
	return ad, nil
}
