package llm

import _ "embed"

var (
	//go:embed prompts/parse_resume.txt
	promptParseResume string
	//go:embed prompts/job_fit.txt
	promptJobFit string
	//go:embed prompts/cover_letter.txt
	promptCoverLetter string
	//go:embed prompts/tailored_resume.txt
	promptTailoredResume string
)

// PromptTemplate returns the instruction template for a task and whether the
// task was recognized.
func PromptTemplate(task Task) (string, bool) {
	switch task {
	case TaskParseResume:
		return promptParseResume, true
	case TaskJobFit:
		return promptJobFit, true
	case TaskCoverLetter:
		return promptCoverLetter, true
	case TaskTailoredResume:
		return promptTailoredResume, true
	default:
		return "", false
	}
}
