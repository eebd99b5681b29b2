package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"

	"github.com/akashstwt/scraper-backend/internal/common"
	"github.com/akashstwt/scraper-backend/internal/httpclient"
	"github.com/akashstwt/scraper-backend/internal/models"
)

const hotTonerSearchURL = "https://www.hottoner.com.au/index.php?route=product/search&filter_cartridge=%s"

// HotTonerAdapter is the stateless HTTP adapter for hottoner.com.au. One GET
// per lookup; the cartridge search either redirects straight to a product
// detail page or renders a result table, so both shapes are parsed.
type HotTonerAdapter struct {
	client  *resty.Client
	config  common.ScraperConfig
	logger  arbor.ILogger
	baseURL string
}

// NewHotTonerAdapter creates a HotToner source adapter sharing the given
// resty client.
func NewHotTonerAdapter(client *resty.Client, config common.ScraperConfig, logger arbor.ILogger) *HotTonerAdapter {
	return &HotTonerAdapter{
		client:  client,
		config:  config,
		logger:  logger,
		baseURL: hotTonerSearchURL,
	}
}

func (a *HotTonerAdapter) Source() models.Source {
	return models.SourceHotToner
}

// Lookup fetches one code from HotToner. Non-200 responses are reported as
// Not Found; transport and parse faults as Error. Never returns an error.
func (a *HotTonerAdapter) Lookup(ctx context.Context, code string) models.ResultRecord {
	url := fmt.Sprintf(a.baseURL, code)

	resp, err := a.client.R().SetContext(ctx).Get(url)
	if err != nil {
		a.logger.Warn().Err(err).Str("code", code).Msg("HotToner request failed")
		return models.ErrorRecord(code, models.SourceHotToner, url)
	}
	if resp.StatusCode() != http.StatusOK {
		a.logger.Debug().Int("status", resp.StatusCode()).Str("code", code).Msg("HotToner non-200 response")
		return models.NotFoundRecord(code, models.SourceHotToner, url)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		a.logger.Warn().Err(err).Str("code", code).Msg("HotToner parse failed")
		return models.ErrorRecord(code, models.SourceHotToner, url)
	}

	record := a.parsePage(doc, code, url)

	// Pause between lookups so the site does not rate-limit us
	httpclient.RandomDelay(a.config.MinDelay, a.config.MaxDelay)

	return record
}

// parsePage handles the two page shapes the cartridge search produces:
// a product detail page when the code matches a single product, or a
// search-results table when it matches several.
func (a *HotTonerAdapter) parsePage(doc *goquery.Document, code, url string) models.ResultRecord {
	if doc.Find("div.product-info").Length() > 0 {
		return a.parseDetailPage(doc, code, url)
	}

	list := doc.Find("div.product-list")
	if list.Length() == 0 {
		return models.NotFoundRecord(code, models.SourceHotToner, url)
	}

	item := list.Find("li").First()
	if item.Length() == 0 {
		return models.NotFoundRecord(code, models.SourceHotToner, url)
	}

	title := models.ValueNA
	if link := item.Find("td.pl-name a").First(); link.Length() > 0 {
		title = strings.TrimSpace(link.Text())
	}

	price := models.ValueNA
	if cell := item.Find("td.pl-our-price").First(); cell.Length() > 0 {
		price = CleanPrice(cell.Text())
	}

	return models.ResultRecord{
		Code:         code,
		Source:       models.SourceHotToner,
		Title:        title,
		Price:        price,
		Availability: DetectAvailability(item.Text()),
		URL:          url,
	}
}

func (a *HotTonerAdapter) parseDetailPage(doc *goquery.Document, code, url string) models.ResultRecord {
	title := models.ValueNA
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		title = strings.TrimSpace(h1.Text())
	}

	price := models.ValueNA
	if span := doc.Find("div.price span.price-new").First(); span.Length() > 0 {
		price = CleanPrice(span.Text())
	} else if div := doc.Find("div.price").First(); div.Length() > 0 {
		price = CleanPrice(div.Text())
	}

	availability := DetectAvailability(doc.Text())
	if doc.Find("div.OutofStock").Length() > 0 {
		availability = models.AvailabilityOutOfStock
	}

	return models.ResultRecord{
		Code:         code,
		Source:       models.SourceHotToner,
		Title:        title,
		Price:        price,
		Availability: availability,
		URL:          url,
	}
}

// Close is a no-op; the adapter holds no per-instance resources
func (a *HotTonerAdapter) Close() error {
	return nil
}
