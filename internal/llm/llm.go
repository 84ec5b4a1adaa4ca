package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client translates README text through any OpenAI-compatible chat API. It
// is an alternative to the backend's /api/translate endpoint.
type Client struct {
	client   *openai.Client
	model    string
	language string
}

func NewClient(baseURL, apiKey, model, language string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

const systemPromptTemplate = `You are a technical translator. Translate the Markdown document the user sends into %s.

Rules:
- Keep all Markdown structure: headings, lists, tables, links, images and HTML tags.
- Do not translate code blocks, inline code, URLs, or command lines.
- If the document is already in %s, return it unchanged.

Return ONLY the translated document. No preamble, no code fences around it.`

func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPromptTemplate, c.language, c.language)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("LLM translation: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM translation: no choices returned")
	}

	out := stripCodeFences(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("LLM translation: empty response")
	}
	return out, nil
}

// stripCodeFences removes a single fence some models wrap around the whole
// answer. Fences inside the document are left alone.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || strings.Count(s, "```") != 2 {
		return s
	}
	// Remove opening fence (```markdown or ```)
	i := strings.Index(s, "\n")
	if i == -1 {
		return s
	}
	inner := s[i+1 : len(s)-3]
	return strings.TrimSpace(inner)
}
