package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestDockerHubSource(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jhumanj/opnform-api", r.URL.Path)
		assert.Equal(t, contract.DefaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{
			"name": "opnform-api",
			"user": "jhumanj",
			"pull_count": 123456,
			"star_count": 7,
			"date_registered": "2023-01-02T03:04:05.123456Z",
			"last_updated": "2024-06-10T08:00:00Z"
		}`))
	})

	src := NewDockerHubSource(NewClient(time.Second), srv.URL+"/", "jhumanj/opnform-api")
	assert.Equal(t, "pulls:jhumanj/opnform-api", src.Metric().ID)

	total, err := src.FetchCurrentTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(123456), total)

	info, err := src.FetchRepository(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opnform-api", info.Name)
	assert.Equal(t, "jhumanj", info.User)
	assert.Equal(t, int64(7), info.Stars)
	assert.Equal(t, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), info.LastUpdated)
	assert.Equal(t, 2023, info.DateRegistered.Year())
}

func TestDockerHubSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "server error", status: http.StatusServiceUnavailable, body: "down", wantMsg: "unexpected status 503"},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"object not found"}`, wantMsg: "unexpected status 404"},
		{name: "bad json", status: http.StatusOK, body: `{"pull_count":`, wantMsg: "decode response"},
		{name: "missing field", status: http.StatusOK, body: `{"name":"x"}`, wantMsg: "no pull_count"},
		{name: "negative", status: http.StatusOK, body: `{"pull_count":-1}`, wantMsg: "negative pull_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			src := NewDockerHubSource(NewClient(time.Second), srv.URL, "a/b")

			_, err := src.FetchCurrentTotal(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, contract.ErrUpstreamUnavailable))
			assert.Contains(t, err.Error(), tt.wantMsg)

			var upErr *contract.UpstreamError
			require.True(t, errors.As(err, &upErr))
			assert.Equal(t, "dockerhub a/b", upErr.Source)
		})
	}
}

func TestDockerHubSource_Timeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"pull_count":1}`))
	})
	src := NewDockerHubSource(NewClient(20*time.Millisecond), srv.URL, "a/b")

	_, err := src.FetchCurrentTotal(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrUpstreamUnavailable)
}

func TestDockerHubSource_CanceledContext(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pull_count":1}`))
	})
	src := NewDockerHubSource(NewClient(time.Second), srv.URL, "a/b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.FetchCurrentTotal(ctx)
	assert.ErrorIs(t, err, contract.ErrUpstreamUnavailable)
}

func TestGitHubSource(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/opnform/opnform", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"name": "opnform",
			"full_name": "opnform/opnform",
			"stargazers_count": 2500,
			"updated_at": "2024-06-10T08:00:00Z",
			"owner": {"login": "opnform"}
		}`))
	})

	src := NewGitHubSource(NewClient(time.Second).WithToken("secret"), srv.URL, "opnform/opnform")
	assert.Equal(t, schema.StarsKind, src.Metric().Kind)

	total, err := src.FetchCurrentTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2500), total)

	info, err := src.FetchRepository(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opnform/opnform", info.Name)
	assert.Equal(t, "opnform", info.User)
	assert.True(t, info.DateRegistered.IsZero())
}

func TestGitHubSource_NoToken(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	})

	src := NewGitHubSource(NewClient(time.Second), srv.URL, "opnform/opnform")
	_, err := src.FetchCurrentTotal(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestGitHubSource_MissingCount(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"full_name":"a/b"}`))
	})
	src := NewGitHubSource(NewClient(time.Second), srv.URL, "a/b")
	_, err := src.FetchCurrentTotal(context.Background())
	assert.ErrorIs(t, err, contract.ErrUpstreamUnavailable)
}

func TestParseTimestamp(t *testing.T) {
	assert.True(t, parseTimestamp("").IsZero())
	assert.True(t, parseTimestamp("yesterday").IsZero())
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), parseTimestamp("2024-01-02T03:04:05Z"))
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(0)
	assert.Equal(t, contract.DefaultHTTPTimeout, c.http.Timeout)
}
