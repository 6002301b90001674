package docimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/drillbook/drillbook/internal/bank"
)

// QuestionPersister is the storage capability Import needs. The accepted
// batch must be committed atomically.
type QuestionPersister interface {
	PersistQuestions(ctx context.Context, questions []bank.Question) (int, error)
}

// Rejection records one unit skipped during import.
type Rejection struct {
	Ref  string // human-readable locator, e.g. "unit 3: 2+2=?"
	Code bank.RejectCode
}

// Result is the outcome of one import call.
type Result struct {
	Accepted  []bank.Question
	Rejected  []Rejection
	Committed int // rows newly persisted; re-imported duplicates are not counted
}

// Importer runs the detect / segment / resolve pipeline and hands the
// accepted batch to the store.
type Importer struct {
	store QuestionPersister
}

func NewImporter(store QuestionPersister) *Importer {
	return &Importer{store: store}
}

// Import parses raw document bytes of the given kind into canonical
// questions and persists the accepted ones in a single batch. Unit-level
// failures land in Result.Rejected; a document no detector can read
// fails with ErrUnrecognizedFormat and nothing is persisted.
func (im *Importer) Import(ctx context.Context, raw []byte, kind Kind, sourceName string) (*Result, error) {
	det, err := DetectorFor(kind)
	if err != nil {
		return nil, err
	}
	blocks, err := det.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", sourceName, err)
	}

	res := &Result{}
	for _, unit := range Segment(blocks) {
		q, err := Resolve(&unit, sourceName)
		if err != nil {
			var rej *bank.RejectError
			if errors.As(err, &rej) {
				res.Rejected = append(res.Rejected, Rejection{Ref: unitRef(&unit), Code: rej.Code})
				continue
			}
			return nil, err
		}
		res.Accepted = append(res.Accepted, *q)
	}

	if len(res.Accepted) > 0 && im.store != nil {
		n, err := im.store.PersistQuestions(ctx, res.Accepted)
		if err != nil {
			return nil, fmt.Errorf("persist batch: %w", err)
		}
		res.Committed = n
	}
	return res, nil
}

func unitRef(u *Unit) string {
	stem := []rune(u.Stem)
	if len(stem) > 40 {
		return fmt.Sprintf("unit %d: %s…", u.Ordinal, string(stem[:40]))
	}
	return fmt.Sprintf("unit %d: %s", u.Ordinal, u.Stem)
}
