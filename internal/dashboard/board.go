package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/justsurfingit/jacker/internal/models"
)

// FilterAll disables status filtering.
const FilterAll = "All"

// FilterOptions are the choices offered by the dashboard status filter.
var FilterOptions = []string{
	FilterAll,
	string(models.StatusApplied),
	string(models.StatusRejected),
	string(models.StatusInterview),
	string(models.StatusInProgress),
}

var ErrInvalidStatus = errors.New("INVALID_STATUS")

// Store is the slice of the job store the dashboard reads and edits.
type Store interface {
	ListAll(ctx context.Context) ([]models.TrackedJob, error)
	UpdateStatus(ctx context.Context, id string, status models.JobStatus) error
}

type Stats struct {
	Total      int `json:"total"`
	ThisWeek   int `json:"thisWeek"`
	Today      int `json:"today"`
	Interviews int `json:"interviews"`
}

// Board is a local snapshot of the job list plus the status editor.
// It is safe for concurrent use.
type Board struct {
	store Store

	mu   sync.RWMutex
	jobs []models.TrackedJob
}

func NewBoard(store Store) *Board {
	return &Board{store: store}
}

// Load replaces the snapshot with the store's current list.
// On error the previous snapshot is kept.
func (b *Board) Load(ctx context.Context) error {
	jobs, err := b.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}
	b.mu.Lock()
	b.jobs = jobs
	b.mu.Unlock()
	return nil
}

// Jobs returns a copy of the snapshot in store order.
func (b *Board) Jobs() []models.TrackedJob {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.TrackedJob, len(b.jobs))
	copy(out, b.jobs)
	return out
}

// Filter returns the loaded jobs whose status equals option exactly.
// FilterAll returns everything.
func (b *Board) Filter(option string) []models.TrackedJob {
	if option == FilterAll {
		return b.Jobs()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []models.TrackedJob{}
	for _, j := range b.jobs {
		if string(j.Status) == option {
			out = append(out, j)
		}
	}
	return out
}

// SetStatus shows the new status immediately and then writes it. If the
// write fails the local record goes back to its previous status and the
// error is returned.
func (b *Board) SetStatus(ctx context.Context, id string, status models.JobStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	b.mu.Lock()
	idx := b.indexOf(id)
	var prev models.JobStatus
	if idx >= 0 {
		prev = b.jobs[idx].Status
		b.jobs[idx].Status = status
	}
	b.mu.Unlock()

	if err := b.store.UpdateStatus(ctx, id, status); err != nil {
		if idx >= 0 {
			b.rollback(id, status, prev)
		}
		return fmt.Errorf("update status of %s: %w", id, err)
	}
	return nil
}

// rollback restores prev unless someone changed the record again meanwhile.
func (b *Board) rollback(id string, applied, prev models.JobStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 && b.jobs[i].Status == applied {
		b.jobs[i].Status = prev
	}
}

func (b *Board) indexOf(id string) int {
	for i := range b.jobs {
		if b.jobs[i].ID == id {
			return i
		}
	}
	return -1
}

// Stats summarizes the snapshot relative to now. "Today" is the calendar
// day of now in now's location; "this week" is the last seven days.
func (b *Board) Stats(now time.Time) Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	weekAgo := now.Add(-7 * 24 * time.Hour)
	y, m, d := now.Date()

	st := Stats{Total: len(b.jobs)}
	for _, j := range b.jobs {
		at := j.TrackedAt.In(now.Location())
		if !at.Before(weekAgo) {
			st.ThisWeek++
		}
		if ay, am, ad := at.Date(); ay == y && am == m && ad == d {
			st.Today++
		}
		if j.Status == models.StatusInterview {
			st.Interviews++
		}
	}
	return st
}
