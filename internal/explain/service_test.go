package explain

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/llm"
)

func sampleQuestion() *bank.Question {
	return &bank.Question{
		Type: bank.TypeSingleChoice,
		Stem: "2+2=?",
		Options: []bank.Option{
			{Label: "A", Text: "3"}, {Label: "B", Text: "4"},
		},
		Correct: []string{"B"},
	}
}

func TestExplainParsesStructuredOutput(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"explanation":"Adding two and two gives four.","key_point":"basic addition"}`),
	})
	svc := NewService(mock, DefaultConfig())

	out, err := svc.Explain(context.Background(), sampleQuestion(), "A")
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if out.KeyPoint != "basic addition" {
		t.Errorf("KeyPoint = %q", out.KeyPoint)
	}
	if !strings.Contains(out.Explanation, "four") {
		t.Errorf("Explanation = %q", out.Explanation)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != ExplanationSchema {
		t.Error("request did not carry the explanation schema")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"2+2=?", "A. 3", "B. 4", "Correct answer: B", "Learner's answer: A"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
}

func TestExplainOmitsEmptyGivenAnswer(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"explanation":"ok then","key_point":"x"}`),
	})
	if _, err := NewService(mock, DefaultConfig()).Explain(context.Background(), sampleQuestion(), "  "); err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if strings.Contains(mock.Calls[0].Messages[0].Content, "Learner's answer") {
		t.Error("prompt mentions learner's answer for blank input")
	}
}

func TestExplainRejectsMalformedResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`not json`),
	})
	if _, err := NewService(mock, DefaultConfig()).Explain(context.Background(), sampleQuestion(), ""); err == nil {
		t.Error("Explain() = nil error for malformed response")
	}
}

func TestExplainRejectsEmptyExplanation(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"explanation":"  ","key_point":"x"}`),
	})
	if _, err := NewService(mock, DefaultConfig()).Explain(context.Background(), sampleQuestion(), ""); err == nil {
		t.Error("Explain() = nil error for empty explanation")
	}
}
