package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"# Title\n\nBody", "# Title\n\nBody"},
		{"```markdown\n# Title\n```", "# Title"},
		{"```\nplain\n```\n", "plain"},
		{"```go\nfmt.Println()\n```\n\ntext\n\n```sh\nls\n```", "```go\nfmt.Println()\n```\n\ntext\n\n```sh\nls\n```"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "`+"```markdown\\n# Hello\\n```"+`"}}]
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "sk-test", "test-model", "English")
	out, err := c.Translate(context.Background(), "# Hola")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "# Hello" {
		t.Errorf("Translate = %q", out)
	}
	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[1].Content != "# Hola" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "into English") {
		t.Errorf("system prompt missing target language: %q", req.Messages[0].Content)
	}
}

func TestTranslateEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "x", "object": "chat.completion", "choices": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", "test-model", "English")
	if _, err := c.Translate(context.Background(), "hola"); err == nil {
		t.Error("expected error when no choices are returned")
	}
}
