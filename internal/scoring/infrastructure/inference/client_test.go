package inference

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	response *Response
	err      error
	calls    int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(_ context.Context, _ *Request) (*Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.response, nil
}

func newTestTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(uuid.New(), "Write quarterly report")
	require.NoError(t, err)
	return task
}

func TestClient_ImpactScore(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{name: "bare integer", content: "72", want: 72},
		{name: "integer in prose", content: "The score is 85.", want: 85},
		{name: "clamped above 100", content: "150", want: 100},
		{name: "no integer at all", content: "hard to say", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{response: &Response{Content: tt.content}}
			client := NewClient(provider, slog.New(slog.DiscardHandler))

			got, err := client.ImpactScore(context.Background(), newTestTask(t))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_EffortScore_UsesPattern(t *testing.T) {
	provider := &fakeProvider{response: &Response{Content: "40"}}
	client := NewClient(provider, slog.New(slog.DiscardHandler))

	userID := uuid.New()
	pattern := domain.DefaultPattern(userID, time.Now().UTC())

	got, err := client.EffortScore(context.Background(), newTestTask(t), pattern)
	require.NoError(t, err)
	assert.Equal(t, 40, got)
	assert.Equal(t, 1, provider.calls)
}

func TestClient_RateLimitPassesThrough(t *testing.T) {
	provider := &fakeProvider{err: &ProviderError{
		Provider:   "fake",
		StatusCode: http.StatusTooManyRequests,
		Message:    "Too Many Requests",
	}}
	client := NewClient(provider, slog.New(slog.DiscardHandler))

	// Well past the breaker's trip threshold: rate limits never open it.
	for i := 0; i < 10; i++ {
		_, err := client.ImpactScore(context.Background(), newTestTask(t))
		require.Error(t, err)
		assert.True(t, IsRateLimited(err))
	}
	assert.Equal(t, 10, provider.calls)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	provider := &fakeProvider{err: &ProviderError{
		Provider:   "fake",
		StatusCode: http.StatusInternalServerError,
		Message:    "upstream exploded",
	}}
	client := NewClient(provider, slog.New(slog.DiscardHandler))

	for i := 0; i < 5; i++ {
		_, err := client.ImpactScore(context.Background(), newTestTask(t))
		require.Error(t, err)
	}
	require.Equal(t, 5, provider.calls)

	_, err := client.ImpactScore(context.Background(), newTestTask(t))
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, provider.calls, "open breaker must not reach the provider")
	assert.False(t, IsRateLimited(err))
}

func TestAnthropicProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [{"type": "text", "text": "65"}],
			"model": "claude-sonnet-4-5-20250929"
		}`))
	}))
	defer server.Close()

	provider := NewAnthropicProvider("test-key", "", server.URL)
	resp, err := provider.Complete(context.Background(), &Request{Prompt: "rate this"})
	require.NoError(t, err)
	assert.Equal(t, "65", resp.Content)
	assert.Equal(t, "claude-sonnet-4-5-20250929", resp.Model)
}

func TestAnthropicProvider_RateLimitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "Too Many Requests"}}`))
	}))
	defer server.Close()

	provider := NewAnthropicProvider("test-key", "", server.URL)
	_, err := provider.Complete(context.Background(), &Request{Prompt: "rate this"})
	require.Error(t, err)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.True(t, IsRateLimited(err))
}

func TestIsRateLimited(t *testing.T) {
	assert.False(t, IsRateLimited(nil))
	assert.False(t, IsRateLimited(assert.AnError))
	assert.True(t, IsRateLimited(&ProviderError{StatusCode: 429, Message: "slow down"}))
	assert.True(t, IsRateLimited(&ProviderError{Message: "Too Many Requests"}))
}
