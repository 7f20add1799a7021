package question

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// SubjectKey is the comparison form of a subject label: NFC, case-folded,
// inner whitespace collapsed. "  Álgebra  Linear" and "álgebra linear" share a key.
func SubjectKey(s string) string {
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	// a Caser is stateful, so one per call
	return cases.Fold().String(s)
}

// EncodeSubjects is the serialized representation stored in subjects_json.
func EncodeSubjects(subjects []string) (string, error) {
	if subjects == nil {
		subjects = []string{}
	}
	b, err := json.Marshal(subjects)
	if err != nil {
		return "", fmt.Errorf("question: encode subjects: %w", err)
	}
	return string(b), nil
}

// DecodeSubjects reverses EncodeSubjects. An empty column decodes to an empty list.
func DecodeSubjects(raw string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("question: decode subjects: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
