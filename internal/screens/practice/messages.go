package practice

import (
	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/explain"
	"github.com/drillbook/drillbook/internal/quiz"
)

// workingSetMsg is sent when the question set has been loaded.
type workingSetMsg struct {
	Questions []bank.Question
	Err       error
}

// submitResultMsg is sent when an answer has been graded and persisted.
type submitResultMsg struct {
	Outcome *quiz.Outcome
	Err     error
}

// explainReadyMsg is sent when the LLM explanation request finishes.
type explainReadyMsg struct {
	Out *explain.Explanation
	Err error
}
