// Package explain asks an LLM for a short explanation of the correct
// answer when a question carries no analysis of its own. The feature is
// optional; without a configured provider the app simply shows nothing.
package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/llm"
)

// Config holds generation limits for explanations.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.3,
	}
}

// Explanation is the structured LLM output shown on the feedback screen.
type Explanation struct {
	Explanation string `json:"explanation"`
	KeyPoint    string `json:"key_point"`
}

// Service generates explanations through an llm.Provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates an explanation service. provider must not be nil;
// callers decide beforehand whether the feature is available.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Explain produces an explanation for the question's correct answer,
// mentioning the learner's wrong answer when given.
func (s *Service) Explain(ctx context.Context, q *bank.Question, givenAnswer string) (*Explanation, error) {
	ctx = llm.WithPurpose(ctx, "answer-explanation")

	userMsg, err := buildExplainMessage(q, givenAnswer)
	if err != nil {
		return nil, fmt.Errorf("build explanation prompt: %w", err)
	}

	req := llm.Request{
		System: explainSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      ExplanationSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM explanation failed: %w", err)
	}

	var out Explanation
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("failed to parse explanation response: %w", err)
	}
	if strings.TrimSpace(out.Explanation) == "" {
		return nil, fmt.Errorf("empty explanation from provider")
	}
	return &out, nil
}

const explainSystemPrompt = `You are a patient study coach. A learner answered a practice question incorrectly. Explain why the correct answer is correct.

Instructions:
- Answer in the language the question is written in.
- Keep the explanation to 2-4 sentences. Do not restate the full question.
- If the learner's answer is given, briefly say why it is wrong.
- Name the single key concept the learner most likely missed.`

var explainUserTemplate = template.Must(template.New("explain").Parse(`Question: {{.Stem}}
{{- range .Options}}
{{.Label}}. {{.Text}}
{{- end}}
Correct answer: {{.Correct}}
{{- if .Given}}
Learner's answer: {{.Given}}
{{- end}}`))

func buildExplainMessage(q *bank.Question, given string) (string, error) {
	data := struct {
		Stem    string
		Options []bank.Option
		Correct string
		Given   string
	}{
		Stem:    q.Stem,
		Options: q.Options,
		Correct: q.CorrectDisplay(),
		Given:   strings.TrimSpace(given),
	}
	var buf bytes.Buffer
	if err := explainUserTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
