package bookings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"wanderly/internal/bookings"
	"wanderly/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionJobSweepsPastConfirmedBookings(t *testing.T) {
	repo := newFakeRepo(&fakeCatalog{})
	today, _ := bookings.DayBounds(time.Now())

	done1 := repo.insert(bookings.Booking{Date: today.AddDate(0, 0, -3), Status: bookings.StatusConfirmed})
	done2 := repo.insert(bookings.Booking{Date: today.AddDate(0, 0, -1), Status: bookings.StatusConfirmed})
	todays := repo.insert(bookings.Booking{Date: today, Status: bookings.StatusConfirmed})
	upcoming := repo.insert(bookings.Booking{Date: today.AddDate(0, 0, 2), Status: bookings.StatusConfirmed})
	cancelled := repo.insert(bookings.Booking{Date: today.AddDate(0, 0, -2), Status: bookings.StatusCancelled})
	unpaid := repo.insert(bookings.Booking{Date: today.AddDate(0, 0, -2), Status: bookings.StatusPending})

	// batch of one forces the sweep to loop
	job := bookings.NewCompletionJob(repo, config.JobConfig{CompletionInterval: time.Hour, CompletionBatch: 1})
	assert.EqualValues(t, 2, job.Sweep(context.Background()))

	want := map[uuid.UUID]bookings.Status{
		done1.ID:     bookings.StatusCompleted,
		done2.ID:     bookings.StatusCompleted,
		todays.ID:    bookings.StatusConfirmed,
		upcoming.ID:  bookings.StatusConfirmed,
		cancelled.ID: bookings.StatusCancelled,
		unpaid.ID:    bookings.StatusPending,
	}
	for id, status := range want {
		got, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	assert.Zero(t, job.Sweep(context.Background()), "second sweep has nothing left")
}

type failingCompleter struct{ calls int }

func (f *failingCompleter) CompletePast(context.Context, time.Time, int) (int64, error) {
	f.calls++
	return 0, errors.New("connection refused")
}

func TestCompletionJobStopsOnErrorAndCancel(t *testing.T) {
	store := &failingCompleter{}
	job := bookings.NewCompletionJob(store, config.JobConfig{})
	assert.Zero(t, job.Sweep(context.Background()))
	assert.Equal(t, 1, store.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, job.Run(ctx))
}
