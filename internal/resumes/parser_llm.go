package resumes

import (
	"context"
	"encoding/json"
	"fmt"

	"upfolio-backend/internal/llm"
)

// LLMParser structures resume text through an llm.Client.
type LLMParser struct {
	Client llm.Client
}

// ParseResume asks the model for the canonical content JSON and decodes it.
func (p LLMParser) ParseResume(ctx context.Context, text string) (Content, error) {
	raw, err := p.Client.Generate(ctx, llm.Input{
		Task:       llm.TaskParseResume,
		ResumeText: text,
	})
	if err != nil {
		return Content{}, err
	}
	var content Content
	if err := json.Unmarshal(raw, &content); err != nil {
		return Content{}, fmt.Errorf("decode parsed resume: %w", err)
	}
	return content, nil
}

var _ Parser = LLMParser{}
