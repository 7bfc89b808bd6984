package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	due       []ScheduledDeletion
	scheduled []string
	done      []string
}

func (f *fakeRepo) Schedule(ctx context.Context, userID string) error {
	f.scheduled = append(f.scheduled, userID)
	return nil
}

func (f *fakeRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]ScheduledDeletion, error) {
	return f.due, nil
}

func (f *fakeRepo) MarkDone(ctx context.Context, id string) error {
	f.done = append(f.done, id)
	return nil
}

type fakePurger struct {
	err    error
	purged []string
}

func (f *fakePurger) PurgeForCreator(ctx context.Context, userID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.purged = append(f.purged, userID)
	return 2, nil
}

func TestRunDueDeletions(t *testing.T) {
	t.Run("purges due entries and marks them done", func(t *testing.T) {
		entry := ScheduledDeletion{ID: uuid.New(), UserID: uuid.New(), Status: DeletionPending}
		repo := &fakeRepo{due: []ScheduledDeletion{entry}}
		purger := &fakePurger{}

		runDueDeletions(context.Background(), repo, purger, zap.NewNop())

		assert.Equal(t, []string{entry.UserID.String()}, purger.purged)
		assert.Equal(t, []string{entry.ID.String()}, repo.done)
	})

	t.Run("failed purge leaves the entry pending", func(t *testing.T) {
		entry := ScheduledDeletion{ID: uuid.New(), UserID: uuid.New(), Status: DeletionPending}
		repo := &fakeRepo{due: []ScheduledDeletion{entry}}
		purger := &fakePurger{err: errors.New("db down")}

		runDueDeletions(context.Background(), repo, purger, zap.NewNop())

		assert.Empty(t, repo.done)
	})

	t.Run("empty queue is a no op", func(t *testing.T) {
		repo := &fakeRepo{}
		purger := &fakePurger{}

		runDueDeletions(context.Background(), repo, purger, zap.NewNop())

		assert.Empty(t, purger.purged)
		require.Empty(t, repo.done)
	})
}
