package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarosser06/mosaic/internal/domain"
	"github.com/jarosser06/mosaic/internal/notify"
	"github.com/jarosser06/mosaic/internal/repository"
	"github.com/jarosser06/mosaic/internal/testutil"
)

// fakeNotifier records payloads instead of posting them.
type fakeNotifier struct {
	mu       sync.Mutex
	payloads []notify.Payload
	err      error
}

func (f *fakeNotifier) Send(ctx context.Context, p notify.Payload) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return 1, f.err
	}
	return 1, nil
}

func (f *fakeNotifier) sent() []notify.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Payload(nil), f.payloads...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func schedulerSetup(t *testing.T) (*Scheduler, repository.ReminderRepo, *fakeNotifier) {
	t.Helper()
	db := testutil.NewTestDB(t)
	repo := repository.NewSQLiteReminderRepo(db)
	notifier := &fakeNotifier{}
	sched := New(repo, notifier, time.Minute, testLogger())
	return sched, repo, notifier
}

func TestScheduler_DispatchesDueReminderOnce(t *testing.T) {
	sched, repo, notifier := schedulerSetup(t)
	ctx := context.Background()

	rem := &domain.Reminder{
		ReminderTime: time.Now().UTC().Add(-time.Hour),
		Message:      "standup",
	}
	require.NoError(t, repo.Create(ctx, rem))

	sched.CheckDue(ctx)
	sched.Stop() // waits for dispatch goroutines

	sent := notifier.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "standup", sent[0].Message)
	assert.Equal(t, rem.ID, sent[0].Metadata["reminder_id"])

	// A second scan must not re-dispatch the same reminder_time.
	sched2 := New(repo, notifier, time.Minute, testLogger())
	sched2.CheckDue(ctx)
	sched2.Stop()
	assert.Len(t, notifier.sent(), 1)
}

func TestScheduler_SkipsSnoozedAndCompleted(t *testing.T) {
	sched, repo, notifier := schedulerSetup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &domain.Reminder{
		ReminderTime: now.Add(-time.Hour), Message: "done", IsCompleted: true,
	}))
	require.NoError(t, repo.Create(ctx, &domain.Reminder{
		ReminderTime: now.Add(-time.Hour), Message: "snoozed",
		SnoozedUntil: testutil.Ptr(now.Add(time.Hour)),
	}))
	require.NoError(t, repo.Create(ctx, &domain.Reminder{
		ReminderTime: now.Add(time.Hour), Message: "future",
	}))

	sched.CheckDue(ctx)
	sched.Stop()
	assert.Empty(t, notifier.sent())
}

func TestScheduler_FailedDispatchDoesNotBlockOthers(t *testing.T) {
	sched, repo, notifier := schedulerSetup(t)
	ctx := context.Background()
	notifier.err = context.DeadlineExceeded

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Create(ctx, &domain.Reminder{
			ReminderTime: time.Now().UTC().Add(-time.Hour), Message: msg,
		}))
	}

	sched.CheckDue(ctx)
	sched.Stop()
	// Every reminder was attempted despite each failing.
	assert.Len(t, notifier.sent(), 3)
}

func TestScheduler_FailedReminderNotResurrected(t *testing.T) {
	sched, repo, notifier := schedulerSetup(t)
	ctx := context.Background()
	notifier.err = context.DeadlineExceeded

	rem := &domain.Reminder{ReminderTime: time.Now().UTC().Add(-time.Hour), Message: "flaky"}
	require.NoError(t, repo.Create(ctx, rem))

	sched.CheckDue(ctx)
	sched.Stop()
	require.Len(t, notifier.sent(), 1)

	// Delivery failed, but the dispatch watermark stands: no retry loop.
	sched2 := New(repo, notifier, time.Minute, testLogger())
	sched2.CheckDue(ctx)
	sched2.Stop()
	assert.Len(t, notifier.sent(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	sched, repo, notifier := schedulerSetup(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Reminder{
		ReminderTime: time.Now().UTC().Add(-time.Minute), Message: "tick",
	}))

	require.NoError(t, sched.Start())
	// The first cron firing is an interval away; drive one check directly.
	sched.CheckDue(ctx)
	sched.Stop()
	assert.Len(t, notifier.sent(), 1)
}
