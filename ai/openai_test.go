package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIImageClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewOpenAIImageClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return client
}

func TestNewOpenAIImageClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIImageClient(OpenAIConfig{})
	assert.Error(t, err)
}

func TestOpenAIImageClient_SendsExpectedRequest(t *testing.T) {
	var got imageGenerationRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"url":"https://img.example/1.png"}]}`))
	})

	url, err := client.GenerateImage(context.Background(), "a knight")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/1.png", url)
	assert.Equal(t, imageGenerationRequest{
		Model:          "dall-e-3",
		Prompt:         "a knight",
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "url",
	}, got)
}

func TestOpenAIImageClient_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "provider error", status: http.StatusBadRequest, body: `{"error":{"message":"content policy violation"}}`, wantStatus: 400, wantMsg: "content policy violation"},
		{name: "non-json error", status: http.StatusBadGateway, body: `upstream down`, wantStatus: 502, wantMsg: "Bad Gateway"},
		{name: "malformed json", status: http.StatusOK, body: `{"data":`},
		{name: "empty data", status: http.StatusOK, body: `{"data":[]}`},
		{name: "empty url", status: http.StatusOK, body: `{"data":[{"url":""}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			url, err := client.GenerateImage(context.Background(), "prompt")
			assert.Empty(t, url)

			var extErr *ExternalError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.wantStatus, extErr.StatusCode)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, extErr.Message)
			}
		})
	}
}

func TestOpenAIImageClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewOpenAIImageClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GenerateImage(context.Background(), "prompt")
	var extErr *ExternalError
	require.ErrorAs(t, err, &extErr)
	assert.Error(t, extErr.Unwrap())
}
