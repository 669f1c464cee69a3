package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dispatch-voice/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackend(t *testing.T) {
	g, err := New(config.LLMConfig{Provider: config.LLMProviderOpenAI, OpenAIAPIKey: "k", OpenAIModel: "m"}, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)

	g, err = New(config.LLMConfig{Provider: config.LLMProviderAnthropic, AnthropicAPIKey: "k", AnthropicModel: "m"}, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, g)

	_, err = New(config.LLMConfig{Provider: "cohere"}, time.Second)
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenAI_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  {\"driver_status\":\"Arrived\"}\n"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	g := NewOpenAI("sk-test", "gpt-4o-mini", srv.URL+"/v1", time.Second)
	out, err := g.Generate(context.Background(), Request{
		System:      "sys",
		Prompt:      "extract",
		Temperature: 0.1,
		JSON:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"driver_status":"Arrived"}`, out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok, "expected response_format in request")
	assert.Equal(t, "json_object", format["type"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "extract", msgs[1].(map[string]any)["content"])
}

func TestOpenAI_GenerateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI("sk-test", "gpt-4o-mini", srv.URL+"/v1", time.Second).Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
}

func TestOpenAI_GenerateRejectsEmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"   "}}]}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI("sk-test", "gpt-4o-mini", srv.URL+"/v1", time.Second).Generate(context.Background(), Request{Prompt: "x"})
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropic_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
"content":[{"type":"text","text":"Thanks Sam, "},{"type":"text","text":"where are you now?"}],
"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":8}}`)
	}))
	defer srv.Close()

	g := NewAnthropic("ak-test", "claude-3-5-haiku-latest", srv.URL, time.Second)
	out, err := g.Generate(context.Background(), Request{System: "be brief", Prompt: "ctx", Temperature: 0.7, MaxTokens: 150})
	require.NoError(t, err)
	assert.Equal(t, "Thanks Sam, where are you now?", out)

	assert.Equal(t, float64(150), got["max_tokens"])
	assert.Equal(t, 0.7, got["temperature"])
	system, ok := got["system"].([]any)
	require.True(t, ok)
	assert.Equal(t, "be brief", system[0].(map[string]any)["text"])
}

func TestAnthropic_GenerateDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	}))
	defer srv.Close()

	_, err := NewAnthropic("ak-test", "m", srv.URL, time.Second).Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
