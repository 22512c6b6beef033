package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"upfolio-backend/internal/credits"
	"upfolio-backend/internal/llm"
	"upfolio-backend/internal/resumes"
	"upfolio-backend/internal/shared/metrics"
)

var (
	// ErrInsufficientCredits means the balance does not cover the feature.
	// The LLM is never called in that case.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrNoResume means the user has no version to work from.
	ErrNoResume = errors.New("no resume version available")
	// ErrInvalidInput rejects empty job descriptions.
	ErrInvalidInput = errors.New("invalid input")
)

// Service runs the metered AI features. Credits are debited up front; a
// failed LLM call after the debit is not refunded.
type Service struct {
	Resumes *resumes.Service
	Credits *credits.Service
	LLM     llm.Client
}

// NewService constructs a Service.
func NewService(resumeSvc *resumes.Service, creditSvc *credits.Service, client llm.Client) *Service {
	return &Service{Resumes: resumeSvc, Credits: creditSvc, LLM: client}
}

// JobFitResult scores a resume against a job description.
type JobFitResult struct {
	Score     int      `json:"score"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	Summary   string   `json:"summary"`
}

// CoverLetterResult is a generated cover letter.
type CoverLetterResult struct {
	CoverLetter string `json:"coverLetter"`
}

// JobFit scores the user's resume against the job description.
func (s *Service) JobFit(ctx context.Context, userID, jobDescription string) (JobFitResult, credits.DebitResult, error) {
	var result JobFitResult
	debit, err := s.run(ctx, userID, jobDescription, credits.FeatureJobFitAnalysis, llm.TaskJobFit, &result)
	return result, debit, err
}

// CoverLetter writes a cover letter for the job description.
func (s *Service) CoverLetter(ctx context.Context, userID, jobDescription string) (CoverLetterResult, credits.DebitResult, error) {
	var result CoverLetterResult
	debit, err := s.run(ctx, userID, jobDescription, credits.FeatureCoverLetter, llm.TaskCoverLetter, &result)
	return result, debit, err
}

// TailoredResume rewrites the resume content for the job description.
func (s *Service) TailoredResume(ctx context.Context, userID, jobDescription string) (resumes.Content, credits.DebitResult, error) {
	var result resumes.Content
	debit, err := s.run(ctx, userID, jobDescription, credits.FeatureTailoredResume, llm.TaskTailoredResume, &result)
	return result, debit, err
}

// run is the shared gate: resolve the resume, debit, then call the model.
// The debit strictly precedes the Generate call.
func (s *Service) run(ctx context.Context, userID, jobDescription string, feature credits.Feature, task llm.Task, out any) (credits.DebitResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return credits.DebitResult{}, fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}

	v, err := s.Resumes.PublishedOrLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return credits.DebitResult{}, ErrNoResume
		}
		return credits.DebitResult{}, err
	}
	resumeJSON, err := json.Marshal(v.Content)
	if err != nil {
		return credits.DebitResult{}, err
	}

	metrics.IncAssistantRequested()

	debit, err := s.Credits.TryDebit(ctx, userID, feature)
	if err != nil {
		return credits.DebitResult{}, err
	}
	if !debit.Allowed {
		metrics.IncCreditsDenied()
		return debit, ErrInsufficientCredits
	}

	start := time.Now()
	raw, err := s.LLM.Generate(ctx, llm.Input{
		Task:           task,
		ResumeJSON:     string(resumeJSON),
		JobDescription: jobDescription,
	})
	if err != nil {
		metrics.IncAssistantFailed()
		return debit, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		metrics.IncAssistantFailed()
		return debit, fmt.Errorf("decode %s response: %w", task, err)
	}

	metrics.IncAssistantCompleted()
	metrics.ObserveAssistantDurationMs(float64(time.Since(start)) / float64(time.Millisecond))
	return debit, nil
}
