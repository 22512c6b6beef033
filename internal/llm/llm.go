package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Task selects which generation a request performs.
type Task string

const (
	TaskParseResume    Task = "parse_resume"
	TaskJobFit         Task = "job_fit"
	TaskCoverLetter    Task = "cover_letter"
	TaskTailoredResume Task = "tailored_resume"
)

// Input carries everything a task prompt needs. ResumeText is the raw
// extracted text (parse task); ResumeJSON is the structured content the
// assistant tasks work from.
type Input struct {
	Task           Task
	ResumeText     string
	ResumeJSON     string
	JobDescription string
}

// Client abstracts LLM providers. Every task responds with a JSON document.
type Client interface {
	Generate(ctx context.Context, input Input) (json.RawMessage, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM not configured")

// PlaceholderClient stands in when no provider credentials are set.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, input Input) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}
