package client

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FormError is a client-side form check failure. The server re-validates
// everything; these checks only save a round trip.
type FormError struct {
	Field  string
	Reason string
}

func (e *FormError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Reason) }

// ValidateQuestion checks a question form before submit.
func ValidateQuestion(in QuestionInput) error {
	if err := structErr(in); err != nil {
		return err
	}
	if len(in.Alternatives) == 0 {
		return nil
	}
	correct := 0
	for _, a := range in.Alternatives {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return &FormError{Field: "Alternatives", Reason: "mark exactly one alternative as correct"}
	}
	return nil
}

// ValidateExam checks an exam form before submit.
func ValidateExam(in ExamInput) error {
	return structErr(in)
}

func structErr(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return &FormError{Field: ves[0].Field(), Reason: ves[0].Tag()}
	}
	return err
}
