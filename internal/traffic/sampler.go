package traffic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/canaryspectre/internal/models"
	"github.com/ppiankov/canaryspectre/pkg/config"
)

// Sampler sends sequential requests at the published host and classifies
// each response by body content
type Sampler struct {
	client   *http.Client
	limiter  *rate.Limiter
	url      string
	marker   string
	requests int
	timeout  time.Duration
}

// NewSampler creates a sampler from cfg. httpClient may be nil.
func NewSampler(cfg *config.Config, httpClient *http.Client) *Sampler {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	return &Sampler{
		client:   httpClient,
		limiter:  rate.NewLimiter(limit, 1),
		url:      cfg.TrafficURL,
		marker:   cfg.CanaryMarker,
		requests: cfg.Requests,
		timeout:  cfg.RequestTimeout,
	}
}

// Percentage returns canary/total as a percentage, 0 when total is 0
func Percentage(canary, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(canary) / float64(total) * 100
}

// Run sends every request in order. The first failed request aborts the
// test; status codes are not inspected.
func (s *Sampler) Run(ctx context.Context) (models.TrafficResults, error) {
	results := models.TrafficResults{TotalRequestsSent: s.requests}

	for i := 0; i < s.requests; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("traffic test interrupted: %w", err)
		}

		canary, err := s.probe(ctx)
		if err != nil {
			return results, fmt.Errorf("traffic request %d/%d failed: %w", i+1, s.requests, err)
		}
		if canary {
			results.CanaryResponsesReceived++
		} else {
			results.MainResponsesReceived++
		}
	}

	results.ActualCanaryPercentage = models.Float(Percentage(results.CanaryResponsesReceived, s.requests))

	slog.Debug("traffic test complete",
		slog.Int("main", results.MainResponsesReceived),
		slog.Int("canary", results.CanaryResponsesReceived),
		slog.Float64("canary_percentage", float64(results.ActualCanaryPercentage)),
	)

	return results, nil
}

func (s *Sampler) probe(ctx context.Context) (bool, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Debug("non-200 traffic response", slog.Int("status", resp.StatusCode))
	}

	return strings.Contains(string(body), s.marker), nil
}
