package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/justsurfingit/jacker/internal/metrics"
	"github.com/justsurfingit/jacker/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultJobTitle = "Job Application"
	UnknownLocation = "Unknown"
)

// PageScraper renders a URL and returns its visible text.
type PageScraper interface {
	Enabled() bool
	Scrape(ctx context.Context, pageURL string) (string, error)
}

// JobExtractor turns page text into structured job fields.
type JobExtractor interface {
	Enabled() bool
	ExtractJobDetails(ctx context.Context, pageText string) (*models.JobExtraction, error)
}

func (s *ScraperService) Enabled() bool { return s.APIKey != "" }

func (s *LLMService) Enabled() bool { return s.Client != nil }

type TrackRequest struct {
	URL   string
	Title string
}

type TrackResult struct {
	Job    *models.TrackedJob
	Method models.AnalysisMethod
	// Recovered is set when the first write failed and the basic record was
	// written on the second attempt.
	Recovered bool
	// SkipReason says why the AI tier did not produce the record, if it didn't.
	SkipReason error
}

// tier builds a record or explains why it can't. Tiers never persist.
type tier struct {
	method models.AnalysisMethod
	build  func(ctx context.Context, req TrackRequest) (*models.TrackedJob, error)
}

// IngestionService records a tracked URL, enriching it when the AI path works.
// Only a failed store write, after one recovery attempt, is reported as an error.
type IngestionService struct {
	Scraper   PageScraper
	Extractor JobExtractor
	Store     JobStore
	Cache     ExtractionCache
	Logger    *zap.Logger

	tiers []tier
}

// NewIngestionService wires the pipeline. cache may be nil.
func NewIngestionService(scraper PageScraper, extractor JobExtractor, store JobStore, cache ExtractionCache, log *zap.Logger) *IngestionService {
	s := &IngestionService{
		Scraper:   scraper,
		Extractor: extractor,
		Store:     store,
		Cache:     cache,
		Logger:    log.With(zap.String("component", "ingestion")),
	}
	s.tiers = []tier{
		{method: models.AnalysisAIEnhanced, build: s.aiTier},
		{method: models.AnalysisBasic, build: s.basicTier},
	}
	return s
}

// Track runs the tiers top-down, persists the first record produced and
// falls back to writing a plain basic record once if that write fails.
func (s *IngestionService) Track(ctx context.Context, req TrackRequest) (*TrackResult, error) {
	log := s.Logger.With(zap.String("url", req.URL))
	log.Info("tracking job")

	job, method, skipped := s.buildRecord(ctx, req, log)

	_, err := s.Store.Create(ctx, job)
	if err == nil {
		metrics.JobsTracked.WithLabelValues(string(method)).Inc()
		log.Info("job saved", zap.String("id", job.ID), zap.String("method", string(method)))
		return &TrackResult{Job: job, Method: method, SkipReason: skipped}, nil
	}
	metrics.PersistFailures.WithLabelValues("primary").Inc()
	log.Error("saving job failed, retrying with basic record", zap.Error(err))

	// Rebuilt from the request alone so nothing from the AI path leaks in.
	fallback := BasicRecord(req)
	if _, err := s.Store.Create(ctx, fallback); err != nil {
		metrics.PersistFailures.WithLabelValues("recovery").Inc()
		log.Error("recovery save failed", zap.Error(err))
		if !errors.Is(err, ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil, err
	}

	metrics.JobsTracked.WithLabelValues(string(models.AnalysisBasic)).Inc()
	log.Warn("job saved with basic info after failed write", zap.String("id", fallback.ID))
	return &TrackResult{Job: fallback, Method: models.AnalysisBasic, Recovered: true, SkipReason: skipped}, nil
}

func (s *IngestionService) buildRecord(ctx context.Context, req TrackRequest, log *zap.Logger) (*models.TrackedJob, models.AnalysisMethod, error) {
	var skipped error
	for _, t := range s.tiers {
		job, err := t.build(ctx, req)
		if err != nil {
			reason := skipReason(err)
			metrics.TierSkips.WithLabelValues(reason).Inc()
			log.Warn("tier skipped", zap.String("tier", string(t.method)), zap.String("reason", reason), zap.Error(err))
			if skipped == nil {
				skipped = err
			}
			continue
		}
		return job, t.method, skipped
	}
	return BasicRecord(req), models.AnalysisBasic, skipped
}

func (s *IngestionService) aiTier(ctx context.Context, req TrackRequest) (*models.TrackedJob, error) {
	if s.Extractor == nil || !s.Extractor.Enabled() {
		return nil, fmt.Errorf("%w: extraction service not configured", ErrConfigMissing)
	}
	if s.Scraper == nil || !s.Scraper.Enabled() {
		return nil, fmt.Errorf("%w: scraping service not configured", ErrConfigMissing)
	}

	if ext := s.cachedExtraction(ctx, req.URL); ext != nil {
		s.Logger.Info("using cached extraction", zap.String("url", req.URL))
		return MergeExtraction(req, ext), nil
	}

	text, err := s.Scraper.Scrape(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(text); n < MinPageTextLength {
		return nil, fmt.Errorf("%w: %d characters", ErrShortContent, n)
	}

	ext, err := s.Extractor.ExtractJobDetails(ctx, text)
	if err != nil {
		return nil, err
	}

	s.rememberExtraction(ctx, req.URL, ext)
	return MergeExtraction(req, ext), nil
}

func (s *IngestionService) basicTier(_ context.Context, req TrackRequest) (*models.TrackedJob, error) {
	return BasicRecord(req), nil
}

func (s *IngestionService) cachedExtraction(ctx context.Context, pageURL string) *models.JobExtraction {
	if s.Cache == nil {
		return nil
	}
	ext, err := s.Cache.Get(ctx, pageURL)
	if err != nil {
		s.Logger.Warn("extraction cache read failed", zap.Error(err))
		return nil
	}
	return ext
}

func (s *IngestionService) rememberExtraction(ctx context.Context, pageURL string, ext *models.JobExtraction) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, pageURL, ext); err != nil {
		s.Logger.Warn("extraction cache write failed", zap.Error(err))
	}
}

// BasicRecord is the record we can always build from the request alone.
func BasicRecord(req TrackRequest) *models.TrackedJob {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultJobTitle
	}
	return &models.TrackedJob{
		OriginalURL:    req.URL,
		JobTitle:       title,
		CompanyName:    CompanyFromURL(req.URL),
		Location:       UnknownLocation,
		Status:         models.StatusApplied,
		AnalysisMethod: models.AnalysisBasic,
	}
}

// MergeExtraction overlays extracted fields on the basic record; an empty
// extracted field keeps the basic value.
func MergeExtraction(req TrackRequest, ext *models.JobExtraction) *models.TrackedJob {
	job := BasicRecord(req)
	if v := strings.TrimSpace(ext.CompanyName); v != "" {
		job.CompanyName = v
	}
	if v := strings.TrimSpace(ext.JobTitle); v != "" {
		job.JobTitle = v
	}
	if v := strings.TrimSpace(ext.Location); v != "" {
		job.Location = v
	}
	job.AnalysisMethod = models.AnalysisAIEnhanced
	return job
}
