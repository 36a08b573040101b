// Package browser searches restaurants by driving a headless Chrome through
// a Google Maps results page.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"biteclub/models"
	"biteclub/search"
	"biteclub/utils"
)

const (
	mapsSearchURL = "https://www.google.com/maps/search/"
	maxResults    = 10
)

// Config holds the provider settings.
type Config struct {
	ChromeBin  string
	Timeout    time.Duration
	MaxRetries int
}

// Provider implements search.Provider with chromedp.
type Provider struct {
	cfg    Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

var _ search.Provider = (*Provider)(nil)

func New(cfg Config, logger *utils.Logger) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

type card struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	URL     string `json:"url"`
}

// Search loads the results page and reads the result cards. Any failure is
// logged and returns an empty slice.
func (p *Provider) Search(ctx context.Context, query string, loc *models.Coordinates) []models.Restaurant {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Restaurant{}
	}

	chromeBin := p.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	p.logger.Debug("[browser] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	target := searchURL(query, loc)
	var cards []card

	err := p.retry.Do(browserCtx, "maps-search", func(ctx context.Context) error {
		tabCtx, cancelTab := chromedp.NewContext(ctx)
		defer cancelTab()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, p.cfg.Timeout)
		defer cancelTimeout()

		var found []card
		err := chromedp.Run(tabCtx,
			chromedp.Navigate(target),
			chromedp.Sleep(4*time.Second),
			chromedp.Evaluate(extractCardsJS, &found),
		)
		if err != nil {
			return fmt.Errorf("chromedp maps search: %w", err)
		}
		cards = found
		return nil
	})
	if err != nil {
		p.logger.Error("[browser] Search for %q failed: %v", query, err)
		return []models.Restaurant{}
	}

	results := cardsToRestaurants(cards)
	p.logger.Debug("[browser] %q → %d candidates", query, len(results))
	return results
}

func searchURL(query string, loc *models.Coordinates) string {
	u := mapsSearchURL + url.PathEscape(query)
	if loc != nil {
		u += fmt.Sprintf("/@%.6f,%.6f,14z", loc.Latitude, loc.Longitude)
	}
	return u
}

// cardsToRestaurants uses the place link as the restaurant id, matching what
// the API-based provider does with maps URIs.
func cardsToRestaurants(cards []card) []models.Restaurant {
	out := make([]models.Restaurant, 0, len(cards))
	for _, c := range cards {
		link := strings.TrimSpace(c.URL)
		if link == "" {
			continue
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = "Unknown Restaurant"
		}
		out = append(out, models.Restaurant{
			ID:      link,
			Name:    name,
			Address: strings.TrimSpace(c.Address),
			MapsURL: link,
		})
		if len(out) == maxResults {
			break
		}
	}
	return search.Dedupe(out)
}

const extractCardsJS = `
	(function() {
		var results = [];
		var seen = {};
		var links = document.querySelectorAll('a[href*="/maps/place/"]');
		for (var i = 0; i < links.length; i++) {
			var link = links[i];
			var href = link.href;
			if (!href || seen[href]) continue;
			seen[href] = true;

			var name = link.getAttribute('aria-label') || '';
			var card = link.closest('[role="article"]') || link.parentElement;
			var address = '';
			if (card) {
				var lines = card.innerText.split('\n').map(function(l){return l.trim();}).filter(Boolean);
				for (var j = 0; j < lines.length; j++) {
					if (lines[j] !== name && /\d/.test(lines[j]) && lines[j].indexOf('·') >= 0) {
						address = lines[j].split('·').pop().trim();
						break;
					}
				}
			}
			results.push({name: name, address: address, url: href});
		}
		return results;
	})()
`

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
