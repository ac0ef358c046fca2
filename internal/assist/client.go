// Package assist requests study summaries from an OpenAI-compatible chat
// completions endpoint.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrEmptyNotes = errors.New("assist: notes are empty")

type Summarizer interface {
	SummarizeNotes(ctx context.Context, notes string) (string, error)
	SubjectStrategy(ctx context.Context, subject string, chapters []string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

var _ Summarizer = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("assist: base_url required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("assist: model required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{},
	}, nil
}

// NewWithHTTPClient is intended for tests.
func NewWithHTTPClient(cfg Config, httpClient *http.Client) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("assist: upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("assist: upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}

const notesPrompt = `You are an expert study assistant for a student preparing for a competitive entrance exam. Summarize the following study notes. Focus on the key concepts, important formulas and definitions. Use Markdown headings, bold text and bullet points so the summary is easy to review.

The student's notes are:
---
%s
---

Provide a concise summary below:`

const strategyPrompt = `Create a high-level study strategy for a student preparing for a competitive entrance exam in the subject %q. The chapters are: %s.
Include a suggested order to tackle the chapters, the key focus areas and high-weightage topics, and problem-solving tips specific to %s.
Format the output using Markdown headings, bullet points and bold text.`

func (c *Client) SummarizeNotes(ctx context.Context, notes string) (string, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return "", ErrEmptyNotes
	}
	return c.complete(ctx, fmt.Sprintf(notesPrompt, notes))
}

func (c *Client) SubjectStrategy(ctx context.Context, subject string, chapters []string) (string, error) {
	list := "none added yet"
	if len(chapters) > 0 {
		list = strings.Join(chapters, ", ")
	}
	return c.complete(ctx, fmt.Sprintf(strategyPrompt, subject, list, subject))
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body := chatCompletionRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assist: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("assist: decode response: %w", err)
	}
	for _, ch := range out.Choices {
		if text := strings.TrimSpace(ch.Message.Content); text != "" {
			return text, nil
		}
	}
	return "", errors.New("assist: empty upstream completion")
}
