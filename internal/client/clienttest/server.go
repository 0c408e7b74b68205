// Package clienttest runs the real API router over an in-memory store for
// tests of API consumers.
package clienttest

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/jacker/internal/handlers"
	"github.com/justsurfingit/jacker/internal/models"
	"github.com/justsurfingit/jacker/internal/services"
	"go.uber.org/zap"
)

// Store is an in-memory services.JobStore.
type Store struct {
	mu    sync.Mutex
	clock services.Clock
	jobs  []models.TrackedJob
}

func NewStore() *Store {
	return &Store{clock: services.NewMonotonicClock(time.Now)}
}

func (s *Store) Create(ctx context.Context, job *models.TrackedJob) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.ID = uuid.NewString()
	job.TrackedAt = s.clock.Now()
	s.jobs = append(s.jobs, *job)
	return job.ID, nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.TrackedJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// reversed first so equal timestamps still list the later insert first
	out := make([]models.TrackedJob, 0, len(s.jobs))
	for i := len(s.jobs) - 1; i >= 0; i-- {
		out = append(out, s.jobs[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TrackedAt.After(out[j].TrackedAt) })
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: job %s", services.ErrNotFound, id)
}

// NewServer starts the API with both AI keys unset, so every tracked job is
// recorded with basic info. The server is closed when the test ends.
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()
	srv, _ := NewServerWithStore(t)
	return srv
}

func NewServerWithStore(t testing.TB) (*httptest.Server, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	llm, err := services.NewLLMService(context.Background(), "", "", 0, 0, log)
	if err != nil {
		t.Fatalf("llm service: %v", err)
	}
	scraper := services.NewScraperService("", "", 0, log)
	store := NewStore()

	ingestion := services.NewIngestionService(scraper, llm, store, nil, log)
	h := handlers.NewJobHandler(ingestion, store, time.Minute, log)
	srv := httptest.NewServer(handlers.NewRouter(h, nil, log))
	t.Cleanup(srv.Close)
	return srv, store
}
