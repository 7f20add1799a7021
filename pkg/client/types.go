package client

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Alternative struct {
	ID          int64  `json:"id,omitempty"`
	Description string `json:"description" validate:"required"`
	IsCorrect   bool   `json:"isCorrect"`
}

type Question struct {
	ID           int64         `json:"IdQuestion"`
	Title        string        `json:"Title"`
	Discipline   string        `json:"Discipline"`
	Subjects     []string      `json:"Subjects"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

// QuestionInput mirrors the question form: five alternatives, one marked correct.
type QuestionInput struct {
	Title        string        `json:"title" validate:"required"`
	Discipline   string        `json:"discipline" validate:"required"`
	Subjects     []string      `json:"subjects" validate:"min=1,dive,required"`
	Alternatives []Alternative `json:"alternatives,omitempty" validate:"omitempty,len=5,dive"`
}

type Exam struct {
	ID            int64      `json:"IdExam"`
	Title         string     `json:"Title"`
	Discipline    string     `json:"Discipline"`
	QuestionCount int        `json:"QuestionCount"`
	QuestionIDs   []int64    `json:"QuestionIds,omitempty"`
	Questions     []Question `json:"Questions,omitempty"`
}

type ExamInput struct {
	Title       string  `json:"title" validate:"required"`
	Discipline  string  `json:"discipline" validate:"required"`
	QuestionIDs []int64 `json:"questionIds" validate:"min=1,max=1000,unique,dive,gt=0"`
}

type QuestionFilter struct {
	Discipline string
	Subject    string
}

type Stats struct {
	TotalQuestions int `json:"totalQuestions"`
	TotalExams     int `json:"totalExams"`
}
