package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tv-ad-booking/internal/model"
	"github.com/iliyamo/tv-ad-booking/internal/repository"
	"github.com/iliyamo/tv-ad-booking/internal/testfixtures"
)

var t0 = time.Date(2026, 4, 10, 18, 30, 0, 0, time.UTC)

func newSlot(id string, start time.Time) *model.Slot {
	return &model.Slot{
		ID:              id,
		Title:           "Evening " + id,
		ChannelName:     "Channel One",
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		DurationSeconds: 30,
		PriceCents:      5000,
		Status:          model.SlotAvailable,
		CreatedBy:       1,
		CreatedAt:       t0,
		UpdatedAt:       t0,
	}
}

func TestSlotRepo_CreateGetList(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSlotRepo(testfixtures.OpenSQLite(t))

	require.NoError(t, repo.Create(ctx, newSlot("b", t0.Add(2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newSlot("a", t0.Add(time.Hour))))
	assert.ErrorIs(t, repo.Create(ctx, newSlot("a", t0)), repository.ErrConflict)

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Evening a", got.Title)
	assert.True(t, got.StartTime.Equal(t0.Add(time.Hour)))
	assert.Equal(t, time.UTC, got.StartTime.Location())

	_, err = repo.GetByID(ctx, "zzz")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := repo.ListByStatus(ctx, model.SlotAvailable)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
}

func TestSlotRepo_CompareAndSetStatus(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSlotRepo(testfixtures.OpenSQLite(t))
	require.NoError(t, repo.Create(ctx, newSlot("s1", t0)))

	s, err := repo.CompareAndSetStatus(ctx, "s1", model.SlotBooked, t0.Add(time.Minute), model.SlotAvailable)
	require.NoError(t, err)
	assert.Equal(t, model.SlotBooked, s.Status)

	cur, err := repo.CompareAndSetStatus(ctx, "s1", model.SlotBooked, t0.Add(2*time.Minute), model.SlotAvailable)
	assert.ErrorIs(t, err, repository.ErrConflict)
	require.NotNil(t, cur)
	assert.Equal(t, model.SlotBooked, cur.Status)

	_, err = repo.CompareAndSetStatus(ctx, "missing", model.SlotBooked, t0, model.SlotAvailable)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	s, err = repo.CompareAndSetStatus(ctx, "s1", model.SlotExpired, t0.Add(3*time.Minute), model.SlotBooked, model.SlotExpired)
	require.NoError(t, err)
	assert.Equal(t, model.SlotExpired, s.Status)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[model.SlotExpired])
}

func TestSlotRepo_ConcurrentCompareAndSetHasOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSlotRepo(testfixtures.OpenSQLite(t))
	require.NoError(t, repo.Create(ctx, newSlot("s1", t0)))

	var mu sync.Mutex
	wins, conflicts := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cur, err := repo.CompareAndSetStatus(ctx, "s1", model.SlotBooked, t0, model.SlotAvailable)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, repository.ErrConflict) && cur != nil && cur.Status == model.SlotBooked:
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 7, conflicts)
}

func TestBookingRepo_CompareAndSetReportsByError(t *testing.T) {
	ctx := context.Background()
	bookings := repository.NewBookingRepo(testfixtures.OpenSQLite(t))
	require.NoError(t, bookings.Create(ctx, &model.Booking{ID: "b1", SlotID: "s1", AdvertiserID: 7, AdvertiserName: "Acme",
		AdTitle: "Spot", Status: model.BookingPending, Slot: model.SnapshotOf(*newSlot("s1", t0)), CreatedAt: t0, UpdatedAt: t0}))

	_, err := bookings.CompareAndSetStatus(ctx, "b1", model.BookingRejected, t0, model.BookingPending)
	require.NoError(t, err)
	// a compensating write moves it back; a stale caller only learns from the error
	back, err := bookings.CompareAndSetStatus(ctx, "b1", model.BookingPending, t0, model.BookingRejected)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, back.Status)

	cur, err := bookings.CompareAndSetStatus(ctx, "b1", model.BookingCompleted, t0, model.BookingApproved)
	require.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, model.BookingPending, cur.Status)
}

func TestSlotRepo_UpdateAndDeleteOnlyWhileAvailable(t *testing.T) {
	ctx := context.Background()
	db := testfixtures.OpenSQLite(t)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	require.NoError(t, slots.Create(ctx, newSlot("s1", t0)))
	require.NoError(t, slots.Create(ctx, newSlot("s2", t0)))

	edit := newSlot("s1", t0)
	edit.Title = "Renamed"
	edit.UpdatedAt = t0.Add(time.Hour)
	require.NoError(t, slots.UpdateDetails(ctx, edit))
	got, err := slots.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	_, err = slots.CompareAndSetStatus(ctx, "s1", model.SlotBooked, t0, model.SlotAvailable)
	require.NoError(t, err)
	assert.ErrorIs(t, slots.UpdateDetails(ctx, edit), repository.ErrConflict)
	assert.ErrorIs(t, slots.Delete(ctx, "s1"), repository.ErrConflict)

	// s2 is available but referenced by a rejected booking.
	require.NoError(t, bookings.Create(ctx, &model.Booking{
		ID: "b1", SlotID: "s2", AdvertiserID: 7, AdvertiserName: "Acme", AdTitle: "Spot",
		Status: model.BookingRejected, Slot: model.SnapshotOf(*newSlot("s2", t0)), CreatedAt: t0, UpdatedAt: t0,
	}))
	assert.ErrorIs(t, slots.Delete(ctx, "s2"), repository.ErrConflict)
	assert.ErrorIs(t, slots.Delete(ctx, "nope"), repository.ErrNotFound)
}

func TestBookingRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := testfixtures.OpenSQLite(t)
	repo := repository.NewBookingRepo(db)
	snap := model.SnapshotOf(*newSlot("s1", t0))
	adID := "ad-1"

	b1 := &model.Booking{ID: "b1", SlotID: "s1", AdvertiserID: 7, AdvertiserName: "Acme", AdID: &adID,
		AdTitle: "Spot", Status: model.BookingPending, Slot: snap, CreatedAt: t0, UpdatedAt: t0}
	b2 := &model.Booking{ID: "b2", SlotID: "s2", AdvertiserID: 7, AdvertiserName: "Acme",
		AdTitle: "Spot 2", Status: model.BookingPending, Slot: snap, CreatedAt: t0.Add(time.Second), UpdatedAt: t0.Add(time.Second)}
	require.NoError(t, repo.Create(ctx, b1))
	require.NoError(t, repo.Create(ctx, b2))

	got, err := repo.GetByID(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, got.AdID)
	assert.Equal(t, "ad-1", *got.AdID)
	assert.Equal(t, snap.Title, got.Slot.Title)
	assert.True(t, snap.StartTime.Equal(got.Slot.StartTime))

	mine, err := repo.ListByAdvertiser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b2", mine[0].ID)
	assert.Nil(t, mine[0].AdID)

	upd, err := repo.CompareAndSetStatus(ctx, "b1", model.BookingApproved, t0.Add(time.Hour), model.BookingPending)
	require.NoError(t, err)
	assert.Equal(t, model.BookingApproved, upd.Status)
	_, err = repo.CompareAndSetStatus(ctx, "b1", model.BookingRejected, t0.Add(time.Hour), model.BookingPending)
	assert.ErrorIs(t, err, repository.ErrConflict)

	pending, err := repo.ListByStatus(ctx, model.BookingPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b2", pending[0].ID)

	totals, err := repo.TotalsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusTotals{Count: 1, PriceCents: 5000}, totals[model.BookingApproved])
	assert.EqualValues(t, 1, totals[model.BookingPending].Count)
}

func TestNotificationRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewNotificationRepo(testfixtures.OpenSQLite(t))
	target := "b1"
	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, repo.Create(ctx, &model.Notification{
			ID: id, UserID: 5, Title: id, Category: model.NotifyInfo, TargetID: &target,
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.Notification{ID: "other", UserID: 6, Title: "x", Category: model.NotifyInfo, CreatedAt: t0}))

	list, err := repo.ListByUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "n3", list[0].ID)
	require.NotNil(t, list[0].TargetID)
	assert.Equal(t, "b1", *list[0].TargetID)

	n, err := repo.MarkRead(ctx, "n1", 5)
	require.NoError(t, err)
	assert.True(t, n.Read)
	_, err = repo.MarkRead(ctx, "n1", 5)
	require.NoError(t, err)
	_, err = repo.MarkRead(ctx, "other", 5)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, err = repo.MarkRead(ctx, "ghost", 5)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	unread, err := repo.CountUnread(ctx, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	all, err := repo.MarkAllRead(ctx, 5)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, n := range all {
		assert.True(t, n.Read)
	}
	unread, err = repo.CountUnread(ctx, 6)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread, "other users are untouched")
}
