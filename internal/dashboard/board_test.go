package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justsurfingit/jacker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

type stubStore struct {
	jobs      []models.TrackedJob
	listErr   error
	updateErr error
	updates   []string
}

func (s *stubStore) ListAll(ctx context.Context) ([]models.TrackedJob, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.TrackedJob, len(s.jobs))
	copy(out, s.jobs)
	return out, nil
}

func (s *stubStore) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	s.updates = append(s.updates, id+"="+string(status))
	return s.updateErr
}

var now = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func sampleJobs() []models.TrackedJob {
	return []models.TrackedJob{
		{ID: "a", TrackedAt: now.Add(-time.Hour), Status: models.StatusInterview},
		{ID: "b", TrackedAt: now.Add(-5 * time.Hour), Status: models.StatusApplied},
		{ID: "c", TrackedAt: now.Add(-3 * 24 * time.Hour), Status: models.StatusInProgress},
		{ID: "d", TrackedAt: now.Add(-10 * 24 * time.Hour), Status: models.StatusRejected},
		{ID: "e", TrackedAt: now.Add(-30 * 24 * time.Hour), Status: models.StatusNone},
		{ID: "f", TrackedAt: now.Add(-40 * 24 * time.Hour), Status: models.StatusInterview},
	}
}

func loadedBoard(t *testing.T, store *stubStore) *Board {
	t.Helper()
	b := NewBoard(store)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func ids(jobs []models.TrackedJob) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestBoard_Filter(t *testing.T) {
	b := loadedBoard(t, &stubStore{jobs: sampleJobs()})

	tests := []struct {
		option string
		want   []string
	}{
		{FilterAll, []string{"a", "b", "c", "d", "e", "f"}},
		{"interview", []string{"a", "f"}},
		{"in progress", []string{"c"}},
		{"rejected", []string{"d"}},
		{"applied", []string{"b"}},
		{"Interview", []string{}},
		{"", []string{"e"}},
	}
	for _, tt := range tests {
		t.Run(tt.option, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(b.Filter(tt.option)))
		})
	}
}

func TestBoard_LoadKeepsSnapshotOnError(t *testing.T) {
	store := &stubStore{jobs: sampleJobs()}
	b := loadedBoard(t, store)

	store.listErr = errStoreDown
	err := b.Load(context.Background())

	assert.ErrorIs(t, err, errStoreDown)
	assert.Len(t, b.Jobs(), 6)
}

func TestBoard_SetStatus(t *testing.T) {
	store := &stubStore{jobs: sampleJobs()}
	b := loadedBoard(t, store)

	require.NoError(t, b.SetStatus(context.Background(), "b", models.StatusInterview))

	assert.Equal(t, []string{"b=interview"}, store.updates)
	assert.Equal(t, []string{"a", "b", "f"}, ids(b.Filter("interview")))
}

func TestBoard_SetStatus_RollsBackOnFailure(t *testing.T) {
	store := &stubStore{jobs: sampleJobs(), updateErr: errStoreDown}
	b := loadedBoard(t, store)

	err := b.SetStatus(context.Background(), "b", models.StatusRejected)

	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, []string{"b"}, ids(b.Filter("applied")))
	assert.Equal(t, []string{"d"}, ids(b.Filter("rejected")))
}

func TestBoard_SetStatus_InvalidStatus(t *testing.T) {
	store := &stubStore{jobs: sampleJobs()}
	b := loadedBoard(t, store)

	err := b.SetStatus(context.Background(), "b", models.JobStatus("hired"))

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, store.updates)
}

func TestBoard_SetStatus_UnloadedID(t *testing.T) {
	store := &stubStore{jobs: sampleJobs(), updateErr: errStoreDown}
	b := loadedBoard(t, store)

	err := b.SetStatus(context.Background(), "zzz", models.StatusApplied)

	assert.ErrorIs(t, err, errStoreDown)
	assert.Len(t, b.Jobs(), 6)
}

func TestBoard_Stats(t *testing.T) {
	b := loadedBoard(t, &stubStore{jobs: sampleJobs()})

	st := b.Stats(now)

	assert.Equal(t, Stats{Total: 6, ThisWeek: 3, Today: 2, Interviews: 2}, st)
}

func TestBoard_Stats_Empty(t *testing.T) {
	b := loadedBoard(t, &stubStore{})
	assert.Equal(t, Stats{}, b.Stats(now))
}
