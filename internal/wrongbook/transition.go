// Package wrongbook owns the lifecycle of the wrongbook: which questions
// need re-drilling and when they graduate out. All state changes flow
// through Transition; callers persist the returned snapshot.
package wrongbook

import "time"

// EvictionThreshold is the consecutive-correct streak that removes a
// question from the active wrongbook.
const EvictionThreshold = 3

// Entry is the wrongbook state for one question.
// Streak counts consecutive correct answers since the last wrong one.
// An inactive entry is kept as history; answering its question wrong
// again reactivates it with a zero streak.
type Entry struct {
	QuestionID string
	Streak     int
	Active     bool
	AddedAt    time.Time
	UpdatedAt  time.Time
}

// Transition applies one answer outcome to a wrongbook snapshot and
// returns the next snapshot. prev is nil when the question has never been
// in the wrongbook; the zero-value return with Active=false means no row
// needs to exist.
//
// Rules:
//   - wrong answer: entry becomes (or stays) active with streak 0
//   - correct answer on an active entry: streak+1; reaching
//     EvictionThreshold deactivates the entry
//   - correct answer with no active entry: no-op
func Transition(prev *Entry, questionID string, correct bool, now time.Time) Entry {
	var next Entry
	if prev != nil {
		next = *prev
	} else {
		next = Entry{QuestionID: questionID, AddedAt: now}
	}
	next.QuestionID = questionID
	next.UpdatedAt = now

	if !correct {
		if prev == nil || !prev.Active {
			next.AddedAt = now
		}
		next.Active = true
		next.Streak = 0
		return next
	}

	if prev == nil || !prev.Active {
		// Correct answer outside the wrongbook changes nothing.
		next.Active = false
		return next
	}

	next.Streak = prev.Streak + 1
	if next.Streak >= EvictionThreshold {
		next.Active = false
	}
	return next
}

// Evicted reports whether the transition from prev to next removed the
// question from the active wrongbook.
func Evicted(prev *Entry, next Entry) bool {
	return prev != nil && prev.Active && !next.Active
}
