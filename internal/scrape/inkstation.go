package scrape

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/akashstwt/scraper-backend/internal/common"
	"github.com/akashstwt/scraper-backend/internal/models"
)

const inkStationSearchURL = "https://www.inkstation.com.au/search?keywords=%s"

// sessionState tracks where the browser session is in its lifecycle
type sessionState int

const (
	sessionUninitialized sessionState = iota
	sessionStarting
	challengePending
	sessionReady
	sessionClosed
)

// contentMarkers indicate real store content has rendered, meaning any
// anti-bot challenge page has been cleared
var contentMarkers = []string{"product", "search", "add to cart", "$"}

// InkStationAdapter looks up OEM codes on the InkStation storefront through
// a real browser. The site sits behind an anti-bot challenge that cannot be
// cleared programmatically, so the first lookup holds until an operator
// solves it in the visible browser window. Once the session is established
// every later lookup reuses it without re-entering the wait.
type InkStationAdapter struct {
	driver PageDriver
	config common.BrowserConfig
	logger arbor.ILogger

	state    sessionState
	startErr error

	closeOnce sync.Once
	closeErr  error

	// overridable in tests
	pollInterval time.Duration
	sleep        func(time.Duration)
}

// NewInkStationAdapter creates an adapter backed by a real Chrome instance.
// The browser is not launched until the first lookup.
func NewInkStationAdapter(config common.BrowserConfig, logger arbor.ILogger) *InkStationAdapter {
	return newInkStationAdapter(NewChromeDriver(config, logger), config, logger)
}

func newInkStationAdapter(driver PageDriver, config common.BrowserConfig, logger arbor.ILogger) *InkStationAdapter {
	return &InkStationAdapter{
		driver:       driver,
		config:       config,
		logger:       logger,
		state:        sessionUninitialized,
		pollInterval: time.Second,
		sleep:        time.Sleep,
	}
}

func (a *InkStationAdapter) Source() models.Source {
	return models.SourceInkStation
}

// Lookup searches InkStation for the given code. All failures are folded
// into the returned record so one bad code or a dead browser never takes
// the job down.
func (a *InkStationAdapter) Lookup(ctx context.Context, code string) models.ResultRecord {
	url := fmt.Sprintf(inkStationSearchURL, code)

	if a.state == sessionClosed {
		return models.ErrorRecord(code, models.SourceInkStation, url)
	}

	// A browser that failed to launch stays failed. Report each code as an
	// error instead of retrying the launch per lookup.
	if a.startErr != nil {
		return models.ErrorRecord(code, models.SourceInkStation, url)
	}

	if a.state == sessionUninitialized {
		a.state = sessionStarting
		if err := a.driver.Start(); err != nil {
			a.startErr = err
			a.logger.Error().Err(err).Msg("Browser session failed to start")
			return models.ErrorRecord(code, models.SourceInkStation, url)
		}
	}

	if err := ctx.Err(); err != nil {
		return models.ErrorRecord(code, models.SourceInkStation, url)
	}

	if err := a.driver.Navigate(url, a.config.PageTimeout); err != nil {
		a.logger.Warn().Err(err).Str("code", code).Msg("InkStation navigation failed")
		return models.ErrorRecord(code, models.SourceInkStation, url)
	}

	if a.state != sessionReady {
		a.state = challengePending
		a.waitForChallenge(ctx)
		// Cached even when the wait timed out: re-prompting the operator on
		// every code would stall the whole batch.
		a.state = sessionReady
	}

	a.sleep(a.config.RenderWait)
	if err := a.driver.ScrollPage(a.config.PageTimeout); err != nil {
		a.logger.Debug().Err(err).Msg("Lazy-load scroll failed, extracting anyway")
	}

	html, err := a.driver.PageHTML(a.config.PageTimeout)
	if err != nil {
		a.logger.Warn().Err(err).Str("code", code).Msg("InkStation page read failed")
		return models.ErrorRecord(code, models.SourceInkStation, url)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.ErrorRecord(code, models.SourceInkStation, url)
	}

	return a.parsePage(doc, code, url)
}

// waitForChallenge polls the rendered page until store content appears,
// giving the operator time to solve the anti-bot challenge in the browser
// window. On timeout it proceeds anyway; extraction then reports whatever
// the page actually holds.
func (a *InkStationAdapter) waitForChallenge(ctx context.Context) {
	a.logger.Info().Msg("Waiting for anti-bot challenge, solve it in the browser window if one appears")

	deadline := time.Now().Add(a.config.ChallengeTimeout)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}

		html, err := a.driver.PageHTML(a.config.PageTimeout)
		if err == nil && pageHasContent(html) {
			a.logger.Info().Msg("Challenge cleared, session established")
			// Let the storefront finish rendering behind the challenge
			a.sleep(a.config.RenderWait)
			return
		}

		a.sleep(a.pollInterval)
	}

	a.logger.Warn().
		Dur("timeout", a.config.ChallengeTimeout).
		Msg("Challenge wait timed out, continuing with current page state")
}

func pageHasContent(html string) bool {
	lower := strings.ToLower(html)
	for _, marker := range contentMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func (a *InkStationAdapter) parsePage(doc *goquery.Document, code, url string) models.ResultRecord {
	product := FindProduct(doc)
	if product == nil {
		a.logger.Debug().Str("code", code).Msg("No product found on InkStation")
		return models.NotFoundRecord(code, models.SourceInkStation, url)
	}

	title := ExtractTitle(product)
	price := ExtractPrice(product)
	availability := DetectAvailability(product.Text())

	a.logger.Info().
		Str("code", code).
		Str("title", title).
		Str("price", price).
		Msg("InkStation result")

	return models.ResultRecord{
		Code:         code,
		Source:       models.SourceInkStation,
		Title:        title,
		Price:        price,
		Availability: availability,
		URL:          url,
	}
}

// Close shuts the browser down. Safe to call more than once.
func (a *InkStationAdapter) Close() error {
	a.closeOnce.Do(func() {
		a.state = sessionClosed
		a.closeErr = a.driver.Close()
	})
	return a.closeErr
}
