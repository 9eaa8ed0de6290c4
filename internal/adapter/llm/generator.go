package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rag-gateway/internal/domain"
	"rag-gateway/internal/infra/httpclient"
)

const keepAliveForever = -1

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string                 `json:"model"`
	Messages  []chatMessage          `json:"messages"`
	Stream    bool                   `json:"stream"`
	KeepAlive int                    `json:"keep_alive"`
	Format    string                 `json:"format,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Generator sends prompts to the local model server's chat endpoint.
// Generate returns the full assistant message; GenerateStream yields it
// incrementally as the server produces tokens.
type Generator struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewGenerator(baseURL, model string, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  httpclient.NewPooledClient(timeout),
	}
}

func (g *Generator) buildRequest(systemPrompt, userPrompt string, opts domain.GenerateOptions, stream bool) chatRequest {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	reqBody := chatRequest{
		Model:     g.Model,
		Messages:  messages,
		Stream:    stream,
		KeepAlive: keepAliveForever,
		Options: map[string]interface{}{
			"temperature": opts.Temperature,
		},
	}
	if opts.MaxTokens > 0 {
		reqBody.Options["num_predict"] = opts.MaxTokens
	}
	if opts.JSONMode {
		reqBody.Format = "json"
	}
	return reqBody
}

func (g *Generator) post(ctx context.Context, reqBody chatRequest) (*http.Response, error) {
	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", g.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

// Generate sends the prompt and returns the complete assistant message.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string, opts domain.GenerateOptions) (string, error) {
	resp, err := g.post(ctx, g.buildRequest(systemPrompt, userPrompt, opts, false))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	return strings.TrimSpace(chatResp.Message.Content), nil
}

// GenerateStream sends the prompt and yields token chunks on the returned
// channel until the server reports done. The error channel receives at
// most one mid-stream failure; both channels close when the stream ends.
func (g *Generator) GenerateStream(ctx context.Context, systemPrompt, userPrompt string, opts domain.GenerateOptions) (<-chan string, <-chan error, error) {
	resp, err := g.post(ctx, g.buildRequest(systemPrompt, userPrompt, opts, true))
	if err != nil {
		return nil, nil, err
	}

	chunks := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var chatResp chatResponse
			if err := json.Unmarshal(line, &chatResp); err != nil {
				errs <- fmt.Errorf("failed to decode stream line: %w", err)
				return
			}
			if chatResp.Message.Content != "" {
				select {
				case chunks <- chatResp.Message.Content:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
			if chatResp.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- fmt.Errorf("stream read failed: %w", err)
		}
	}()

	return chunks, errs, nil
}

var _ domain.LLMClient = (*Generator)(nil)
