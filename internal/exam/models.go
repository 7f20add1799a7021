package exam

import "github.com/mind-engage/mindengage-qbank/internal/question"

type Exam struct {
	ID            int64  `json:"IdExam"`
	Title         string `json:"Title"`
	Discipline    string `json:"Discipline"`
	QuestionCount int    `json:"QuestionCount"` // derived at read time, never stored

	QuestionIDs []int64            `json:"QuestionIds,omitempty"`
	Questions   []question.Summary `json:"Questions,omitempty"` // only on Get
}

// MaxQuestions bounds an exam's question list; the existence check binds one
// parameter per id.
const MaxQuestions = 1000

// Input is the full-replace payload for Create and Update. QuestionIDs keeps
// the caller's order; duplicates are rejected.
type Input struct {
	Title       string  `json:"title" validate:"notblank,max=500"`
	Discipline  string  `json:"discipline" validate:"notblank,max=200"`
	QuestionIDs []int64 `json:"questionIds" validate:"required,min=1,max=1000,dive,gt=0"`
}

// Stats backs the dashboard.
type Stats struct {
	TotalQuestions int `json:"totalQuestions"`
	TotalExams     int `json:"totalExams"`
}
