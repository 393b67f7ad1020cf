package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/events"
	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

func TestBookingService_CreateValidatesDate(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user("alice")
	dune := e.book("Dune", 0)

	_, err := e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, errs.ErrValidation)

	// booking_days_limit is 30
	_, err = e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, 31))
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = e.bookings.Create(e.ctx, alice, 999, e.now.AddDate(0, 0, 3))
	assert.ErrorIs(t, err, ErrBookNotFound)

	b, err := e.bookings.Create(e.ctx, alice, dune.ID, e.now)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.True(t, b.ExpectedAvailableDate.Equal(models.StartOfDay(e.now)))

	_, err = e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, 5))
	assert.ErrorIs(t, err, ErrBookingExists)

	// another reader may book the same title
	_, err = e.bookings.Create(e.ctx, e.user("bob"), dune.ID, e.now.AddDate(0, 0, 5))
	assert.NoError(t, err)
}

func TestBookingService_CancelAndFulfill(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user("alice")
	bob := e.user("bob")
	dune := e.book("Dune", 0)

	b, err := e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, 2))
	require.NoError(t, err)

	_, err = e.bookings.Cancel(e.ctx, bob, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := e.bookings.Cancel(e.ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	_, err = e.bookings.Cancel(e.ctx, alice, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotPending)
	_, err = e.bookings.Fulfill(e.ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotPending)

	// cancelled bookings no longer block a new one
	second, err := e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, 2))
	require.NoError(t, err)

	fulfilled, err := e.bookings.Fulfill(e.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingFulfilled, fulfilled.Status)

	notes := e.notificationsFor("alice")
	require.Len(t, notes, 1)
	assert.Equal(t, "Booked book available", notes[0].Title)

	assert.Equal(t, []string{
		events.BookingCreated,
		events.BookingCancelled,
		events.BookingCreated,
		events.BookingFulfilled,
	}, e.publisher.types())
}

func TestBookingService_UpdateOnlyWhilePending(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user("alice")
	bob := e.user("bob")
	dune := e.book("Dune", 0)

	b, err := e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, 2))
	require.NoError(t, err)

	moveTo := func(days int) Patch[models.Booking] {
		return patchFunc[models.Booking](func(bk *models.Booking) {
			bk.ExpectedAvailableDate = e.now.AddDate(0, 0, days)
		})
	}

	_, err = e.bookings.Update(e.ctx, bob, b.ID, moveTo(4))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.bookings.Update(e.ctx, alice, b.ID, moveTo(60))
	assert.ErrorIs(t, err, errs.ErrValidation)

	updated, err := e.bookings.Update(e.ctx, alice, b.ID, moveTo(4))
	require.NoError(t, err)
	assert.True(t, updated.ExpectedAvailableDate.Equal(models.StartOfDay(e.now.AddDate(0, 0, 4))))

	_, err = e.bookings.Fulfill(e.ctx, b.ID)
	require.NoError(t, err)
	_, err = e.bookings.Update(e.ctx, alice, b.ID, moveTo(5))
	assert.ErrorIs(t, err, ErrBookingNotPending)
}

func TestBookingService_Expiry(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user("alice")
	dune := e.book("Dune", 0)
	emma := e.book("Emma", 0)

	stale, err := e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, 1))
	require.NoError(t, err)
	fresh, err := e.bookings.Create(e.ctx, alice, emma.ID, e.now.AddDate(0, 0, 10))
	require.NoError(t, err)

	e.advance(3 * day)

	got, err := e.bookings.Get(e.ctx, alice, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingExpired, got.EffectiveStatus(e.now))

	_, err = e.bookings.Cancel(e.ctx, alice, stale.ID)
	assert.ErrorIs(t, err, ErrBookingNotPending)

	expired, total, err := e.bookings.ListExpired(e.ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)

	// an expired booking does not block booking the same book again
	_, err = e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, 1))
	require.NoError(t, err)

	n, err := e.bookings.ExpireOverdue(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = e.bookings.Get(e.ctx, alice, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingExpired, got.Status)

	got, err = e.bookings.Get(e.ctx, alice, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)

	// idempotent
	n, err = e.bookings.ExpireOverdue(e.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingService_DeleteAndList(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user("alice")
	bob := e.user("bob")
	admin := e.admin("root")
	dune := e.book("Dune", 0)

	a, err := e.bookings.Create(e.ctx, alice, dune.ID, e.now)
	require.NoError(t, err)
	_, err = e.bookings.Create(e.ctx, bob, dune.ID, e.now)
	require.NoError(t, err)

	byBook, total, err := e.bookings.ListByBook(e.ctx, dune.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byBook, 2)

	_, _, err = e.bookings.ListByBook(e.ctx, 999, 1, 10)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, _, err = e.bookings.List(e.ctx, BookingListFilter{Status: "LOST"}, 1, 10)
	assert.ErrorIs(t, err, errs.ErrValidation)

	assert.ErrorIs(t, e.bookings.Delete(e.ctx, bob, a.ID), ErrForbidden)
	require.NoError(t, e.bookings.Delete(e.ctx, admin, a.ID))
	assert.ErrorIs(t, e.bookings.Delete(e.ctx, admin, a.ID), ErrBookingNotFound)

	mine, total, err := e.bookings.ListMine(e.ctx, alice, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, mine)
}

// staleBookingRepo keeps answering FindByID with a copy read before later writes.
type staleBookingRepo struct {
	repository.BookingRepository
	snapshot *models.Booking
}

func (r *staleBookingRepo) FindByID(ctx context.Context, id int64) (*models.Booking, error) {
	if r.snapshot != nil && r.snapshot.ID == id {
		b := *r.snapshot
		return &b, nil
	}
	return r.BookingRepository.FindByID(ctx, id)
}

func TestBookingService_TransitionsCheckStoredStatus(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user("alice")
	dune := e.book("Dune", 0)

	b, err := e.bookings.Create(e.ctx, alice, dune.ID, e.now.AddDate(0, 0, 2))
	require.NoError(t, err)
	snapshot, err := e.bookings.repo.FindByID(e.ctx, b.ID)
	require.NoError(t, err)

	_, err = e.bookings.Cancel(e.ctx, alice, b.ID)
	require.NoError(t, err)

	stored := e.bookings.repo
	e.bookings.repo = &staleBookingRepo{BookingRepository: stored, snapshot: snapshot}

	_, err = e.bookings.Fulfill(e.ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotPending)

	_, err = e.bookings.Update(e.ctx, alice, b.ID, patchFunc[models.Booking](func(bk *models.Booking) {
		bk.ExpectedAvailableDate = e.now.AddDate(0, 0, 5)
	}))
	assert.ErrorIs(t, err, ErrBookingNotPending)

	current, err := stored.FindByID(e.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, current.Status)
	assert.True(t, current.ExpectedAvailableDate.Equal(snapshot.ExpectedAvailableDate))

	assert.Empty(t, e.notificationsFor("alice"))
	assert.NotContains(t, e.publisher.types(), events.BookingFulfilled)
}
