// Package httpclient builds the shared resty client used by the stateless
// source adapters: Cloudflare-bypass transport, cookie jar, user agent
// rotation, retry policy, and polite per-request pacing.
package httpclient

import (
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/akashstwt/scraper-backend/internal/common"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// RandomUserAgent returns a user agent string picked at random
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// New creates a resty client configured for scraping retail sites. The
// Cloudflare-bypass transport adjusts headers and TLS fingerprint the way a
// regular browser would present them.
func New(config common.ScraperConfig) *resty.Client {
	client := resty.New()

	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetTimeout(config.RequestTimeout)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.5")
	client.SetHeader("Connection", "keep-alive")
	client.SetHeader("Upgrade-Insecure-Requests", "1")

	client.SetRetryCount(config.MaxRetries)
	client.SetRetryWaitTime(2 * time.Second)
	client.SetRetryMaxWaitTime(15 * time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		// 404 means the product does not exist; retrying will not change that
		if r.StatusCode() == http.StatusNotFound {
			return false
		}
		return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
	})

	rps := config.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if err := limiter.Wait(req.Context()); err != nil {
			return err
		}
		ua := config.UserAgent
		if ua == "" {
			ua = RandomUserAgent()
		}
		req.SetHeader("User-Agent", ua)
		return nil
	})

	return client
}

// RandomDelay sleeps for a random duration in [min, max] to reduce the
// chance of rate limiting after a successful lookup.
func RandomDelay(min, max time.Duration) {
	if max <= min {
		time.Sleep(min)
		return
	}
	time.Sleep(min + time.Duration(rand.Int63n(int64(max-min))))
}
