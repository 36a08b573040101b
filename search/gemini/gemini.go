// Package gemini searches restaurants through the Gemini API with Google Maps
// grounding.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"biteclub/models"
	"biteclub/search"
	"biteclub/utils"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultModel    = "gemini-2.5-flash"

	unknownName    = "Unknown Restaurant"
	defaultAddress = "Google Maps Result"
)

// Config holds the provider settings.
type Config struct {
	APIKey     string
	Endpoint   string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Provider implements search.Provider.
type Provider struct {
	cfg    Config
	client *http.Client
	retry  *utils.RetryConfig
	logger *utils.Logger
}

var _ search.Provider = (*Provider)(nil)

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini: status %d: %s", e.code, e.body)
}

// retryable keeps retrying network errors, 429 and 5xx; other HTTP statuses
// will not improve on a second try.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func New(cfg Config, logger *utils.Logger) *Provider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   500 * time.Millisecond,
			Logger:      logger,
			Retryable:   retryable,
		},
	}
}

// Search asks the model for the restaurant and maps the grounding chunks to
// candidates. Failures are logged and yield an empty slice.
func (p *Provider) Search(ctx context.Context, query string, loc *models.Coordinates) []models.Restaurant {
	if p.cfg.APIKey == "" {
		p.logger.Error("[gemini] API key is missing")
		return []models.Restaurant{}
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Restaurant{}
	}

	body, err := buildRequest(query, loc)
	if err != nil {
		p.logger.Error("[gemini] Could not build request: %v", err)
		return []models.Restaurant{}
	}

	var raw []byte
	err = p.retry.Do(ctx, "gemini-search", func(ctx context.Context) error {
		b, postErr := p.post(ctx, body)
		if postErr != nil {
			return postErr
		}
		raw = b
		return nil
	})
	if err != nil {
		p.logger.Error("[gemini] Error searching restaurants: %v", err)
		return []models.Restaurant{}
	}

	results := parseResponse(raw)
	p.logger.Debug("[gemini] %q → %d candidates", query, len(results))
	return results
}

func (p *Provider) post(ctx context.Context, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(p.cfg.Endpoint, "/"), p.cfg.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("gemini: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &statusError{code: resp.StatusCode, body: msg}
	}
	return raw, nil
}

func buildRequest(query string, loc *models.Coordinates) ([]byte, error) {
	prompt := fmt.Sprintf("Find restaurant details for: %q. Return the name, exact address, and Google Maps URL.", query)

	body := []byte(`{"contents":[{"parts":[{"text":""}]}],"tools":[{"googleMaps":{}}]}`)
	body, err := sjson.SetBytes(body, "contents.0.parts.0.text", prompt)
	if err != nil {
		return nil, err
	}
	if loc != nil {
		body, err = sjson.SetRawBytes(body, "toolConfig",
			[]byte(`{"retrievalConfig":{"latLng":{"latitude":0,"longitude":0}}}`))
		if err != nil {
			return nil, err
		}
		if body, err = sjson.SetBytes(body, "toolConfig.retrievalConfig.latLng.latitude", loc.Latitude); err != nil {
			return nil, err
		}
		if body, err = sjson.SetBytes(body, "toolConfig.retrievalConfig.latLng.longitude", loc.Longitude); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// parseResponse keeps grounding chunks that carry a maps entry. A chunk
// without a URI still yields a candidate, under a random id.
func parseResponse(raw []byte) []models.Restaurant {
	chunks := gjson.GetBytes(raw, "candidates.0.groundingMetadata.groundingChunks").Array()

	results := make([]models.Restaurant, 0, len(chunks))
	for _, chunk := range chunks {
		maps := chunk.Get("maps")
		if !maps.Exists() {
			continue
		}
		uri := maps.Get("uri").String()
		name := maps.Get("title").String()
		if name == "" {
			name = unknownName
		}
		id := uri
		if id == "" {
			id = uuid.NewString()
		}
		results = append(results, models.Restaurant{
			ID:      id,
			Name:    name,
			Address: defaultAddress,
			MapsURL: uri,
		})
	}
	return search.Dedupe(results)
}
