package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/utils"
)

// ErrGenerationFailed 上游生成服务失败（超时、配额、响应异常）。
// 调用方可以继续走手动撰写路径，生成失败不阻塞发布。
var ErrGenerationFailed = errors.New("content generation failed")

// previewCacheTTL 同一 (title, category) 的草稿在此窗口内复用，
// 避免作者反复点预览时重复计费调用
const previewCacheTTL = 10 * time.Minute

// ContentAssistService 调用外部生成式服务，为新文章产出正文草稿。
// 草稿只填充编辑区，作者确认后才会发布。
type ContentAssistService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	cache   *utils.TTLCache
}

func NewContentAssistService(cfg *config.Config) *ContentAssistService {
	cache, err := utils.NewTTLCache(256)
	if err != nil {
		log.Fatalf("Failed to create content assist cache: %v", err)
	}
	return &ContentAssistService{
		baseURL: strings.TrimSuffix(cfg.AIBaseURL, "/"),
		apiKey:  cfg.AIAPIKey,
		model:   cfg.AIModel,
		client:  &http.Client{Timeout: 60 * time.Second},
		cache:   cache,
	}
}

// ChatResponse 上游 chat/completions 响应结构
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateDraft 根据标题和分类生成约 1000 词的正文草稿
func (s *ContentAssistService) GenerateDraft(ctx context.Context, title, category string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: AI_API_KEY not configured", ErrGenerationFailed)
	}

	cacheKey := title + "|" + category
	if cached := s.cache.Get(cacheKey); cached != nil {
		return cached.(string), nil
	}

	prompt := fmt.Sprintf(`Write an engaging and informative blog post about %q for the category %q without including any introductory title or headline.
Requirements:
1. Start directly with the introduction to hook the reader and introduce the topic.
2. Main Content: Well-structured points with examples.
3. Conclusion: Summarize key points effectively.
4. Tone: Professional yet conversational.
5. Length: Approximately 1000 words.
6. Format: Use proper paragraphs without adding a title at the beginning.`, title, category)

	requestData := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
		"max_tokens":  2000,
	}
	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: upstream status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrGenerationFailed)
	}

	draft := strings.TrimSpace(result.Choices[0].Message.Content)
	if draft == "" {
		return "", fmt.Errorf("%w: empty content in response", ErrGenerationFailed)
	}

	s.cache.Set(cacheKey, draft, previewCacheTTL)
	return draft, nil
}
