package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/canaryspectre/internal/models"
)

func vectorBody(values ...string) string {
	result := ""
	for i, v := range values {
		if i > 0 {
			result += ","
		}
		result += fmt.Sprintf(`{"metric":{"app":"main-deployment"},"value":[1700000000.123,%q]}`, v)
	}
	return fmt.Sprintf(`{"status":"success","data":{"resultType":"vector","result":[%s]}}`, result)
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, query string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handler(w, r.Form.Get("query"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientQuery(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		wantState models.SampleState
		wantValue string
	}{
		{name: "first_vector_element", status: http.StatusOK, body: vectorBody("1234", "99"), wantState: models.SamplePresent, wantValue: "1234"},
		{name: "fractional_value", status: http.StatusOK, body: vectorBody("0.25"), wantState: models.SamplePresent, wantValue: "0.25"},
		{name: "scalar", status: http.StatusOK, body: `{"status":"success","data":{"resultType":"scalar","result":[1700000000,"7"]}}`, wantState: models.SamplePresent, wantValue: "7"},
		{name: "empty_result", status: http.StatusOK, body: vectorBody(), wantState: models.SampleAbsent},
		{name: "server_error", status: http.StatusInternalServerError, body: "oops", wantState: models.SampleFailed},
		{name: "unavailable_with_error_body", status: http.StatusServiceUnavailable, body: `{"status":"error","errorType":"unavailable","error":"tsdb not ready"}`, wantState: models.SampleFailed},
		{name: "bad_request", status: http.StatusBadRequest, body: `{"status":"error","errorType":"bad_data","error":"parse error"}`, wantState: models.SampleFailed},
		{name: "malformed_body", status: http.StatusOK, body: "not json", wantState: models.SampleFailed},
		{name: "unknown_result_type", status: http.StatusOK, body: `{"status":"success","data":{"resultType":"histogram","result":[]}}`, wantState: models.SampleFailed},
		{name: "numeric_value", status: http.StatusOK, body: `{"status":"success","data":{"resultType":"vector","result":[{"metric":{},"value":[1700000000,7]}]}}`, wantState: models.SampleFailed},
		{name: "matrix_unsupported", status: http.StatusOK, body: `{"status":"success","data":{"resultType":"matrix","result":[{"metric":{},"values":[[1700000000,"1"]]}]}}`, wantState: models.SampleFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotQuery string
			srv := newTestServer(t, func(w http.ResponseWriter, query string) {
				gotQuery = query
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			client, err := NewClient(srv.URL, 5*time.Second, nil)
			require.NoError(t, err)

			sample := client.Query(context.Background(), `http_requests_total{app="main-deployment"}`)
			assert.Equal(t, `http_requests_total{app="main-deployment"}`, gotQuery)
			assert.Equal(t, tc.wantState, sample.State, "err: %v", sample.Err)
			assert.Equal(t, tc.wantValue, sample.Value)
			if tc.wantState == models.SampleFailed {
				assert.Error(t, sample.Err)
				assert.Nil(t, sample.Ptr())
			}
		})
	}
}

func TestClientQueryKeepsWireValue(t *testing.T) {
	for _, wire := range []string{"1.50", "1e3", "0012", "NaN", "+Inf", "-0.000001"} {
		t.Run(wire, func(t *testing.T) {
			var method string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(vectorBody(wire)))
			}))
			t.Cleanup(srv.Close)

			client, err := NewClient(srv.URL, time.Second, nil)
			require.NoError(t, err)

			sample := client.Query(context.Background(), "up")
			assert.Equal(t, http.MethodGet, method)
			require.Equal(t, models.SamplePresent, sample.State, "err: %v", sample.Err)
			assert.Equal(t, wire, sample.Value)
		})
	}
}

func TestClientQueryUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, err := NewClient(addr, time.Second, nil)
	require.NoError(t, err)

	sample := client.Query(context.Background(), "up")
	assert.Equal(t, models.SampleFailed, sample.State)
	assert.Nil(t, sample.Ptr())
}

func TestClientQueryTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, _ string) {
		<-release
	})
	defer close(release)

	client, err := NewClient(srv.URL, 50*time.Millisecond, nil)
	require.NoError(t, err)

	sample := client.Query(context.Background(), "up")
	assert.Equal(t, models.SampleFailed, sample.State)
}

func TestNewClientRejectsBadAddress(t *testing.T) {
	_, err := NewClient("://bad", time.Second, nil)
	assert.Error(t, err)
}
