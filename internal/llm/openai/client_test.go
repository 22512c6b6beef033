package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"upfolio-backend/internal/llm"
)

func newTestClient(t *testing.T, model string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key", model)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.apiURL = srv.URL
	return c
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestGenerateReturnsModelJSON(t *testing.T) {
	c := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"score": 72, "strengths": [], "gaps": [], "summary": "ok"}`)
	})

	raw, err := c.Generate(context.Background(), llm.Input{
		Task:           llm.TaskJobFit,
		ResumeJSON:     `{"header":{"name":"Ada"}}`,
		JobDescription: "Go engineer",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var out struct {
		Score int `json:"score"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Score != 72 {
		t.Fatalf("score = %d, want 72", out.Score)
	}
}

func TestGenerateRepairsInvalidJSONOnce(t *testing.T) {
	calls := 0
	c := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			chatReply(t, w, `{"coverLetter": "Dear team`)
			return
		}
		chatReply(t, w, `{"coverLetter": "Dear team, ..."}`)
	})

	raw, err := c.Generate(context.Background(), llm.Input{
		Task:           llm.TaskCoverLetter,
		ResumeJSON:     `{}`,
		JobDescription: "Go engineer",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if !json.Valid(raw) {
		t.Fatalf("repaired output still invalid: %s", raw)
	}
}

func TestGenerateOmitsTemperatureForGPT5(t *testing.T) {
	for model, wantTemperature := range map[string]bool{
		"gpt-4o-mini": true,
		"gpt-5-mini":  false,
	} {
		var gotBody map[string]any
		c := newTestClient(t, model, func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			chatReply(t, w, `{}`)
		})

		if _, err := c.Generate(context.Background(), llm.Input{Task: llm.TaskParseResume, ResumeText: "text"}); err != nil {
			t.Fatalf("Generate (%s): %v", model, err)
		}
		_, hasTemperature := gotBody["temperature"]
		if hasTemperature != wantTemperature {
			t.Fatalf("model %s: temperature present = %v, want %v", model, hasTemperature, wantTemperature)
		}
	}
}

func TestGenerateRejectsUnknownTask(t *testing.T) {
	c := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{}`)
	})
	if _, err := c.Generate(context.Background(), llm.Input{Task: "weather"}); err == nil {
		t.Fatalf("expected error for unknown task")
	}
}
