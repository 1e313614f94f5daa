package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/api"
	"github.com/prometheus/common/model"

	"github.com/ppiankov/canaryspectre/internal/models"
)

const queryEndpoint = "/api/v1/query"

// Querier runs a single instant query and reports the first value
type Querier interface {
	Query(ctx context.Context, expr string) models.Sample
}

// Client is a Querier backed by the Prometheus HTTP API. Sample values are
// kept exactly as the server wrote them.
type Client struct {
	api     api.Client
	timeout time.Duration
}

// queryResponse is the instant query envelope with the result left raw
type queryResponse struct {
	Status    string   `json:"status"`
	ErrorType string   `json:"errorType"`
	Error     string   `json:"error"`
	Warnings  []string `json:"warnings"`
	Data      struct {
		ResultType model.ValueType `json:"resultType"`
		Result     json.RawMessage `json:"result"`
	} `json:"data"`
}

// NewClient creates a client for the Prometheus server at address.
// httpClient may be nil.
func NewClient(address string, timeout time.Duration, httpClient *http.Client) (*Client, error) {
	apiClient, err := api.NewClient(api.Config{
		Address: address,
		Client:  httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &Client{
		api:     apiClient,
		timeout: timeout,
	}, nil
}

// Query never returns an error. Transport failures, non-2xx responses and
// malformed bodies come back as a failed sample; an empty result is absent.
func (c *Client) Query(ctx context.Context, expr string) models.Sample {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.api.URL(queryEndpoint, nil)
	q := u.Query()
	q.Set("query", expr)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Failed(fmt.Errorf("query %q: %w", expr, err))
	}

	resp, body, err := c.api.Do(ctx, req)
	if err != nil {
		return models.Failed(fmt.Errorf("query %q: %w", expr, err))
	}
	if resp.StatusCode/100 != 2 {
		return models.Failed(fmt.Errorf("query %q: unexpected status %d", expr, resp.StatusCode))
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return models.Failed(fmt.Errorf("query %q: malformed response: %w", expr, err))
	}
	if qr.Status != "success" {
		return models.Failed(fmt.Errorf("query %q: %s: %s", expr, qr.ErrorType, qr.Error))
	}
	for _, w := range qr.Warnings {
		slog.Debug("prometheus warning", slog.String("query", expr), slog.String("warning", w))
	}

	sample := sampleFromResult(qr.Data.ResultType, qr.Data.Result)
	if sample.State == models.SampleFailed {
		sample.Err = fmt.Errorf("query %q: %w", expr, sample.Err)
	}
	return sample
}

// sampleFromResult takes the value of the first vector element, or the
// scalar or string value, without reformatting it.
func sampleFromResult(resultType model.ValueType, result json.RawMessage) models.Sample {
	switch resultType {
	case model.ValVector:
		var vector []struct {
			Value []json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(result, &vector); err != nil {
			return models.Failed(fmt.Errorf("malformed vector result: %w", err))
		}
		if len(vector) == 0 {
			return models.Absent()
		}
		return rawValue(vector[0].Value)
	case model.ValScalar, model.ValString:
		var pair []json.RawMessage
		if err := json.Unmarshal(result, &pair); err != nil {
			return models.Failed(fmt.Errorf("malformed %s result: %w", resultType, err))
		}
		if len(pair) == 0 {
			return models.Absent()
		}
		return rawValue(pair)
	case model.ValNone:
		return models.Absent()
	default:
		return models.Failed(fmt.Errorf("unsupported result type %s", resultType))
	}
}

// rawValue reads the string half of a [timestamp, "value"] pair
func rawValue(pair []json.RawMessage) models.Sample {
	if len(pair) != 2 {
		return models.Failed(fmt.Errorf("expected [timestamp, value] pair, got %d elements", len(pair)))
	}
	var value string
	if err := json.Unmarshal(pair[1], &value); err != nil {
		return models.Failed(fmt.Errorf("sample value is not a string: %w", err))
	}
	return models.Present(value)
}
