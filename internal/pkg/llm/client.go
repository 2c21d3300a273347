package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mihintamu/scholarai-server/config"
)

// TextGenerator 文本生成接口，便于测试时替换为假实现
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DocumentExtractor 文档文本抽取接口（Word/Excel 走大模型抽取）
type DocumentExtractor interface {
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}

// Client 调用 OpenAI 兼容的 /v1/chat/completions 接口。
// 兼容 vLLM、LiteLLM、OpenRouter 以及自建模型服务。
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	extractModel string
	httpClient   *http.Client
}

func NewClient(cfg *config.LLMConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		model:        strings.TrimSpace(cfg.Model),
		extractModel: strings.TrimSpace(cfg.ExtractModel),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// GenerateText 生成文本
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.chat(ctx, c.model, systemPrompt, userPrompt)
}

// ExtractText 用大模型从二进制文档中抽取纯文本
func (c *Client) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	model := c.extractModel
	if model == "" {
		model = c.model
	}

	systemPrompt := "You are a document text extractor. Extract all readable text from the given document. Return only the extracted text, without commentary."
	userPrompt := fmt.Sprintf("Document name: %s\nDocument content (base64):\n%s",
		filename, base64.StdEncoding.EncodeToString(data))

	return c.chat(ctx, model, systemPrompt, userPrompt)
}

func (c *Client) chat(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("llm model required")
	}

	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", fmt.Errorf("llm api error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("llm api error: %s", resp.Status)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("llm decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from llm api")
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response from llm api")
	}
	return text, nil
}

// OpenAI 兼容请求/响应结构

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
