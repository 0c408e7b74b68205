package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/justsurfingit/jacker/internal/metrics"
	"go.uber.org/zap"
)

// MinPageTextLength is the shortest body text (in characters) we treat as a real posting.
const MinPageTextLength = 100

const DefaultScrapeTimeout = 30 * time.Second

// bodyTextJS reads what a user would see, not the raw HTML.
const bodyTextJS = `document.body ? document.body.innerText : ""`

// AllocatorFunc opens the browser side of a session. Cancelling the returned
// context ends the session.
type AllocatorFunc func(ctx context.Context, wsURL string) (context.Context, context.CancelFunc)

// RemoteAllocator connects to an already running browser at wsURL.
func RemoteAllocator(ctx context.Context, wsURL string) (context.Context, context.CancelFunc) {
	return chromedp.NewRemoteAllocator(ctx, wsURL, chromedp.NoModifyURL)
}

// ScraperService renders pages in a remote headless browser (browserless).
// Every call opens exactly one session and closes it before returning.
type ScraperService struct {
	APIKey    string
	Endpoint  string
	Timeout   time.Duration
	Allocator AllocatorFunc
	Logger    *zap.Logger
}

func NewScraperService(apiKey, endpoint string, timeout time.Duration, log *zap.Logger) *ScraperService {
	if timeout <= 0 {
		timeout = DefaultScrapeTimeout
	}
	return &ScraperService{
		APIKey:    apiKey,
		Endpoint:  endpoint,
		Timeout:   timeout,
		Allocator: RemoteAllocator,
		Logger:    log.With(zap.String("component", "scraper")),
	}
}

// Scrape returns the visible text of pageURL as the browser reports it.
func (s *ScraperService) Scrape(ctx context.Context, pageURL string) (text string, err error) {
	if s.APIKey == "" {
		return "", fmt.Errorf("%w: BROWSERLESS_API_KEY not set", ErrConfigMissing)
	}
	wsURL, err := s.sessionURL()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}

	start := time.Now()
	defer func() {
		metrics.ScrapeDuration.WithLabelValues(metrics.ResultLabel(err)).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	alloc := s.Allocator
	if alloc == nil {
		alloc = RemoteAllocator
	}
	// The deferred cancels below are what release the remote session, on
	// every return path including timeouts and navigation errors.
	allocCtx, cancelAlloc := alloc(ctx, wsURL)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	idle := newIdleWatcher()
	chromedp.ListenTarget(browserCtx, idle.handle)

	if err := chromedp.Run(browserCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(pageURL),
		idle.waitMainFrame(),
		chromedp.Evaluate(bodyTextJS, &text),
	); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrScrapeFailed, pageURL, err)
	}

	n := utf8.RuneCountInString(text)
	if n < MinPageTextLength {
		s.Logger.Info("page text too short", zap.String("url", pageURL), zap.Int("chars", n))
		return "", fmt.Errorf("%w: %d characters", ErrShortContent, n)
	}

	s.Logger.Info("scraped page", zap.String("url", pageURL), zap.Int("chars", n))
	return text, nil
}

func (s *ScraperService) sessionURL() (string, error) {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", s.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type frameLoader struct {
	frame  cdp.FrameID
	loader cdp.LoaderID
}

// idleWatcher records which documents reached "networkAlmostIdle" (no more
// than two requests in flight). It must listen before navigation starts.
type idleWatcher struct {
	mu     sync.Mutex
	idle   map[frameLoader]struct{}
	notify chan struct{}
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{
		idle:   make(map[frameLoader]struct{}),
		notify: make(chan struct{}, 1),
	}
}

func (w *idleWatcher) handle(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok || e.Name != "networkAlmostIdle" {
		return
	}
	w.mu.Lock()
	w.idle[frameLoader{frame: e.FrameID, loader: e.LoaderID}] = struct{}{}
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *idleWatcher) seen(key frameLoader) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.idle[key]
	return ok
}

// waitFor blocks until key went idle or ctx ends.
func (w *idleWatcher) waitFor(ctx context.Context, key frameLoader) error {
	for {
		if w.seen(key) {
			return nil
		}
		select {
		case <-w.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// waitMainFrame waits for the document currently loaded in the top-level
// frame. Idle events from iframes or from an earlier document don't count.
func (w *idleWatcher) waitMainFrame() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return fmt.Errorf("frame tree: %w", err)
		}
		return w.waitFor(ctx, frameLoader{frame: tree.Frame.ID, loader: tree.Frame.LoaderID})
	}
}
