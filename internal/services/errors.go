package services

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMissing means a credential needed by an optional tier is absent.
	ErrConfigMissing = errors.New("CONFIG_MISSING")
	// ErrScrapeFailed covers session, navigation and timeout failures.
	ErrScrapeFailed = errors.New("SCRAPE_FAILED")
	// ErrShortContent means the page rendered less text than a real posting has.
	ErrShortContent = errors.New("SHORT_CONTENT")
	// ErrExtractionFailed means the AI service call itself failed.
	ErrExtractionFailed = errors.New("EXTRACTION_FAILED")
	// ErrMalformedExtraction means the AI answered with something that is not a JSON object.
	ErrMalformedExtraction = errors.New("MALFORMED_EXTRACTION")
	// ErrStoreUnavailable means a write or read against the job store failed.
	ErrStoreUnavailable = errors.New("STORE_UNAVAILABLE")
	// ErrNotFound means no record has the requested id.
	ErrNotFound = errors.New("NOT_FOUND")
)

// MalformedExtractionError keeps the raw model output for diagnostics.
type MalformedExtractionError struct {
	Raw string
	Err error
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedExtraction, e.Err)
}

func (e *MalformedExtractionError) Unwrap() error {
	return e.Err
}

func (e *MalformedExtractionError) Is(target error) bool {
	return target == ErrMalformedExtraction
}

// skipReason turns a tier error into a short metric/log label.
func skipReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigMissing):
		return "config_missing"
	case errors.Is(err, ErrShortContent):
		return "short_content"
	case errors.Is(err, ErrScrapeFailed):
		return "scrape_failed"
	case errors.Is(err, ErrMalformedExtraction):
		return "malformed_extraction"
	case errors.Is(err, ErrExtractionFailed):
		return "extraction_failed"
	default:
		return "other"
	}
}
