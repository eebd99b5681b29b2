package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/akashstwt/scraper-backend/internal/models"
)

var priceRegex = regexp.MustCompile(`\$[\d,]+\.?\d*`)

// CleanPrice normalizes raw price text to the first dollar amount it
// contains, or the N/A sentinel when none is present.
func CleanPrice(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ValueNA
	}
	if match := priceRegex.FindString(text); match != "" {
		return match
	}
	return text
}

// containerSelectors are the product card patterns tried in priority order.
// The first match with a price inside wins and the cascade stops.
var containerSelectors = []string{
	"div.product-item",
	"div.product-card",
	"div.product",
	"article.product-item",
	"div.productCard",
	"div.search-result",
	"[data-product-id]",
}

// FindProduct locates the first product card in a rendered search page.
// Returns nil when the page has no recognizable product container.
func FindProduct(doc *goquery.Document) *goquery.Selection {
	for _, selector := range containerSelectors {
		var found *goquery.Selection
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if priceRegex.MatchString(sel.Text()) {
				found = sel
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}

	// Generic fallback: any block element holding both a price and a link
	var found *goquery.Selection
	doc.Find("div, article, li").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if priceRegex.MatchString(sel.Text()) && sel.Find("a[href]").Length() > 0 {
			found = sel
			return false
		}
		return true
	})
	return found
}

// ExtractTitle pulls the product title from a product card using an ordered
// strategy list. Returns the N/A sentinel when no strategy yields text.
func ExtractTitle(product *goquery.Selection) string {
	for _, selector := range []string{"h2", "h3", "h4"} {
		if title := strings.TrimSpace(product.Find(selector).First().Text()); title != "" {
			return title
		}
	}

	var title string
	product.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		class, _ := link.Attr("class")
		lower := strings.ToLower(class)
		if strings.Contains(lower, "title") || strings.Contains(lower, "name") || strings.Contains(lower, "product") {
			if text := strings.TrimSpace(link.Text()); text != "" {
				title = text
				return false
			}
		}
		return true
	})
	if title != "" {
		return title
	}

	// Last resort: any link with substantial text that is not a price
	product.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		text := strings.TrimSpace(link.Text())
		if len(text) > 10 && !strings.Contains(text, "$") {
			title = text
			return false
		}
		return true
	})
	if title != "" {
		return title
	}
	return models.ValueNA
}

// ExtractPrice pulls the first dollar amount from a product card, preferring
// elements whose class mentions "price".
func ExtractPrice(product *goquery.Selection) string {
	var price string
	product.Find("span, div, p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		if strings.Contains(strings.ToLower(class), "price") {
			if match := priceRegex.FindString(sel.Text()); match != "" {
				price = match
				return false
			}
		}
		return true
	})
	if price != "" {
		return price
	}

	if match := priceRegex.FindString(product.Text()); match != "" {
		return match
	}
	return models.ValueNA
}

// DetectAvailability inspects page text for stock markers
func DetectAvailability(pageText string) models.Availability {
	lower := strings.ToLower(pageText)
	if strings.Contains(lower, "out of stock") || strings.Contains(lower, "outofstock") || strings.Contains(lower, "not available") {
		return models.AvailabilityOutOfStock
	}
	if strings.Contains(lower, "instock") || strings.Contains(lower, "in stock") {
		return models.AvailabilityInStock
	}
	return models.AvailabilityAvailable
}
