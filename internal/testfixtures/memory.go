// Package testfixtures provides in-memory stores, a controllable clock and
// a migrated SQLite database for tests.
package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/tv-ad-booking/internal/model"
	"github.com/iliyamo/tv-ad-booking/internal/repository"
)

// Memory bundles in-memory stores that share one lock, so slot deletes can
// see booking references the way the SQL schema does.
type Memory struct {
	mu            sync.Mutex
	Slots         *MemSlots
	Bookings      *MemBookings
	Notifications *MemNotifications
	Channels      *MemChannels
	Ads           *MemAds
}

func NewMemory() *Memory {
	m := &Memory{}
	m.Slots = &MemSlots{m: m, rows: map[string]model.Slot{}}
	m.Bookings = &MemBookings{m: m, rows: map[string]model.Booking{}}
	m.Notifications = &MemNotifications{m: m, rows: map[string]model.Notification{}}
	m.Channels = &MemChannels{m: m, rows: map[string]model.Channel{}}
	m.Ads = &MemAds{m: m, rows: map[string]model.Ad{}}
	return m
}

// MemSlots mirrors repository.SlotRepo.
type MemSlots struct {
	m    *Memory
	rows map[string]model.Slot
}

func (s *MemSlots) Create(_ context.Context, sl *model.Slot) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.rows[sl.ID]; ok {
		return repository.ErrConflict
	}
	s.rows[sl.ID] = *sl
	return nil
}

func (s *MemSlots) GetByID(_ context.Context, id string) (*model.Slot, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sl, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sl, nil
}

func (s *MemSlots) ListByStatus(_ context.Context, status model.SlotStatus) ([]model.Slot, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []model.Slot{}
	for _, sl := range s.rows {
		if sl.Status == status {
			out = append(out, sl)
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *MemSlots) ListAll(_ context.Context) ([]model.Slot, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]model.Slot, 0, len(s.rows))
	for _, sl := range s.rows {
		out = append(out, sl)
	}
	sortSlots(out)
	return out, nil
}

func sortSlots(list []model.Slot) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartTime.Equal(list[j].StartTime) {
			return list[i].StartTime.Before(list[j].StartTime)
		}
		return list[i].ID < list[j].ID
	})
}

func (s *MemSlots) CompareAndSetStatus(_ context.Context, id string, to model.SlotStatus, at time.Time, from ...model.SlotStatus) (*model.Slot, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sl, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, f := range from {
		if sl.Status == f {
			sl.Status = to
			sl.UpdatedAt = at
			s.rows[id] = sl
			return &sl, nil
		}
	}
	return &sl, repository.ErrConflict
}

func (s *MemSlots) UpdateDetails(_ context.Context, sl *model.Slot) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cur, ok := s.rows[sl.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Status != model.SlotAvailable {
		return repository.ErrConflict
	}
	next := *sl
	next.Status = cur.Status
	next.CreatedBy = cur.CreatedBy
	next.CreatedAt = cur.CreatedAt
	s.rows[sl.ID] = next
	return nil
}

func (s *MemSlots) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cur, ok := s.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Status != model.SlotAvailable {
		return repository.ErrConflict
	}
	for _, b := range s.m.Bookings.rows {
		if b.SlotID == id {
			return repository.ErrConflict
		}
	}
	delete(s.rows, id)
	return nil
}

func (s *MemSlots) CountByStatus(_ context.Context) (map[model.SlotStatus]int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := map[model.SlotStatus]int64{}
	for _, sl := range s.rows {
		out[sl.Status]++
	}
	return out, nil
}

// MemBookings mirrors repository.BookingRepo.  CreateErr, when set, is
// returned by Create without storing anything.
type MemBookings struct {
	m         *Memory
	rows      map[string]model.Booking
	CreateErr error
}

func (b *MemBookings) Create(_ context.Context, bk *model.Booking) error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	if b.CreateErr != nil {
		return b.CreateErr
	}
	if _, ok := b.rows[bk.ID]; ok {
		return repository.ErrConflict
	}
	b.rows[bk.ID] = *bk
	return nil
}

func (b *MemBookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	bk, ok := b.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &bk, nil
}

func (b *MemBookings) filter(keep func(model.Booking) bool) []model.Booking {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	out := []model.Booking{}
	for _, bk := range b.rows {
		if keep(bk) {
			out = append(out, bk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (b *MemBookings) ListByAdvertiser(_ context.Context, advertiserID uint64) ([]model.Booking, error) {
	return b.filter(func(bk model.Booking) bool { return bk.AdvertiserID == advertiserID }), nil
}

func (b *MemBookings) ListByStatus(_ context.Context, status model.BookingStatus) ([]model.Booking, error) {
	return b.filter(func(bk model.Booking) bool { return bk.Status == status }), nil
}

func (b *MemBookings) ListAll(_ context.Context) ([]model.Booking, error) {
	return b.filter(func(model.Booking) bool { return true }), nil
}

func (b *MemBookings) CompareAndSetStatus(_ context.Context, id string, to model.BookingStatus, at time.Time, from model.BookingStatus) (*model.Booking, error) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	bk, ok := b.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if bk.Status != from {
		return &bk, repository.ErrConflict
	}
	bk.Status = to
	bk.UpdatedAt = at
	b.rows[id] = bk
	return &bk, nil
}

func (b *MemBookings) TotalsByStatus(_ context.Context) (map[model.BookingStatus]repository.StatusTotals, error) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	out := map[model.BookingStatus]repository.StatusTotals{}
	for _, bk := range b.rows {
		t := out[bk.Status]
		t.Count++
		t.PriceCents += bk.Slot.PriceCents
		out[bk.Status] = t
	}
	return out, nil
}

// MemNotifications mirrors repository.NotificationRepo.
type MemNotifications struct {
	m    *Memory
	rows map[string]model.Notification
}

func (n *MemNotifications) Create(_ context.Context, nt *model.Notification) error {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	n.rows[nt.ID] = *nt
	return nil
}

func (n *MemNotifications) listLocked(userID uint64) []model.Notification {
	out := []model.Notification{}
	for _, nt := range n.rows {
		if nt.UserID == userID {
			out = append(out, nt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (n *MemNotifications) ListByUser(_ context.Context, userID uint64) ([]model.Notification, error) {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	return n.listLocked(userID), nil
}

func (n *MemNotifications) MarkRead(_ context.Context, id string, userID uint64) (*model.Notification, error) {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	nt, ok := n.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if nt.UserID != userID {
		return nil, repository.ErrForbidden
	}
	nt.Read = true
	n.rows[id] = nt
	return &nt, nil
}

func (n *MemNotifications) MarkAllRead(_ context.Context, userID uint64) ([]model.Notification, error) {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	for id, nt := range n.rows {
		if nt.UserID == userID && !nt.Read {
			nt.Read = true
			n.rows[id] = nt
		}
	}
	return n.listLocked(userID), nil
}

func (n *MemNotifications) CountUnread(_ context.Context, userID uint64) (int64, error) {
	n.m.mu.Lock()
	defer n.m.mu.Unlock()
	var c int64
	for _, nt := range n.rows {
		if nt.UserID == userID && !nt.Read {
			c++
		}
	}
	return c, nil
}

// MemChannels mirrors repository.ChannelRepo.
type MemChannels struct {
	m    *Memory
	rows map[string]model.Channel
}

func (c *MemChannels) Create(_ context.Context, ch *model.Channel) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for _, ex := range c.rows {
		if ex.Name == ch.Name {
			return repository.ErrConflict
		}
	}
	c.rows[ch.ID] = *ch
	return nil
}

func (c *MemChannels) GetByID(_ context.Context, id string) (*model.Channel, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	ch, ok := c.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ch, nil
}

func (c *MemChannels) List(_ context.Context) ([]model.Channel, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	out := make([]model.Channel, 0, len(c.rows))
	for _, ch := range c.rows {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MemAds mirrors repository.AdRepo.
type MemAds struct {
	m    *Memory
	rows map[string]model.Ad
}

func (a *MemAds) Create(_ context.Context, ad *model.Ad) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	a.rows[ad.ID] = *ad
	return nil
}

func (a *MemAds) GetByID(_ context.Context, id string) (*model.Ad, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	ad, ok := a.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ad, nil
}

func (a *MemAds) ListByAdvertiser(_ context.Context, advertiserID uint64) ([]model.Ad, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	out := []model.Ad{}
	for _, ad := range a.rows {
		if ad.AdvertiserID == advertiserID {
			out = append(out, ad)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
