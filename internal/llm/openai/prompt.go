package openai

import (
	"fmt"
	"strings"

	"upfolio-backend/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPrompt        = "You are a resume assistant engine. Respond with JSON only. No markdown. Never omit keys. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// BuildPrompt creates the chat messages for a task.
func BuildPrompt(input llm.Input) ([]Message, error) {
	template, ok := llm.PromptTemplate(input.Task)
	if !ok {
		return nil, fmt.Errorf("unknown task %q", input.Task)
	}
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "developer", Content: template},
		{Role: "user", Content: buildUserPrompt(input)},
	}, nil
}

func buildFixPrompt(input llm.Input, raw []byte) []Message {
	template, _ := llm.PromptTemplate(input.Task)
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "developer", Content: template},
		{Role: "user", Content: fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))},
	}
}

func buildUserPrompt(input llm.Input) string {
	var b strings.Builder
	if strings.TrimSpace(input.ResumeText) != "" {
		b.WriteString("Resume Text:\n")
		b.WriteString(input.ResumeText)
	}
	if strings.TrimSpace(input.ResumeJSON) != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Resume JSON:\n")
		b.WriteString(input.ResumeJSON)
	}
	jd := input.JobDescription
	if strings.TrimSpace(jd) == "" {
		jd = "N/A"
	}
	if input.Task != llm.TaskParseResume {
		b.WriteString("\n\nJob Description:\n")
		b.WriteString(jd)
	}
	return b.String()
}
