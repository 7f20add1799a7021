package question

import (
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-qbank/internal/apperr"
)

// normalize trims the input in place and enforces the question invariants:
// subjects unique by key, and alternatives either absent or exactly
// RequiredAlternatives with a single correct one.
func (in *Input) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Discipline = strings.TrimSpace(in.Discipline)
	// copy before trimming; the caller's slices are not ours to rewrite
	in.Subjects = append([]string{}, in.Subjects...)
	for i := range in.Subjects {
		in.Subjects[i] = strings.TrimSpace(in.Subjects[i])
	}
	in.Alternatives = append([]AlternativeInput{}, in.Alternatives...)
	for i := range in.Alternatives {
		in.Alternatives[i].Description = strings.TrimSpace(in.Alternatives[i].Description)
	}

	if err := apperr.Struct(in); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(in.Subjects))
	for _, s := range in.Subjects {
		k := SubjectKey(s)
		if _, dup := seen[k]; dup {
			return apperr.Invalid("subjects", "duplicate subject "+s)
		}
		seen[k] = struct{}{}
	}

	if len(in.Alternatives) == 0 {
		return nil
	}
	if len(in.Alternatives) != RequiredAlternatives {
		return apperr.Invalid("alternatives",
			fmt.Sprintf("expected %d alternatives, got %d", RequiredAlternatives, len(in.Alternatives)))
	}
	correct := 0
	for _, a := range in.Alternatives {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return apperr.Invalid("alternatives",
			fmt.Sprintf("exactly one alternative must be correct, got %d", correct))
	}
	return nil
}
