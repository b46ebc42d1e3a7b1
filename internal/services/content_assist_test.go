package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"inkwell/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) ChatResponse {
	var resp ChatResponse
	resp.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Choices[0].Message.Content = content
	return resp
}

func newAssistService(baseURL string) *ContentAssistService {
	return NewContentAssistService(&config.Config{
		AIBaseURL: baseURL,
		AIAPIKey:  "test-token",
		AIModel:   "test-model",
	})
}

func TestGenerateDraft(t *testing.T) {
	// 模拟上游生成服务
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		json.NewEncoder(w).Encode(chatResponse("  generated draft body  "))
	}))
	defer server.Close()

	s := newAssistService(server.URL)
	draft, err := s.GenerateDraft(context.Background(), "Go Concurrency", "go")
	require.NoError(t, err)
	// 首尾空白被剔除
	assert.Equal(t, "generated draft body", draft)
}

func TestGenerateDraftUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newAssistService(server.URL)
	_, err := s.GenerateDraft(context.Background(), "Go Concurrency", "go")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateDraftEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{})
	}))
	defer server.Close()

	s := newAssistService(server.URL)
	_, err := s.GenerateDraft(context.Background(), "Go Concurrency", "go")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateDraftMissingAPIKey(t *testing.T) {
	s := NewContentAssistService(&config.Config{AIBaseURL: "http://localhost:1", AIModel: "m"})
	_, err := s.GenerateDraft(context.Background(), "Title", "cat")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateDraftCacheHit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(chatResponse("cached draft"))
	}))
	defer server.Close()

	s := newAssistService(server.URL)
	ctx := context.Background()

	first, err := s.GenerateDraft(ctx, "Same Title", "go")
	require.NoError(t, err)
	second, err := s.GenerateDraft(ctx, "Same Title", "go")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// 第二次命中缓存，不再调上游
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// 不同分类是不同缓存键
	_, err = s.GenerateDraft(ctx, "Same Title", "food")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}
