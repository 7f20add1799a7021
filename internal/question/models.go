package question

// RequiredAlternatives is the number of choices a multiple-choice question
// must carry when it carries any.
const RequiredAlternatives = 5

type Alternative struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	IsCorrect   bool   `json:"isCorrect"`
}

// Summary is a question without its alternatives, as returned by listings
// and embedded in exams.
type Summary struct {
	ID         int64    `json:"IdQuestion"`
	Title      string   `json:"Title"`
	Discipline string   `json:"Discipline"`
	Subjects   []string `json:"Subjects"`
}

type Question struct {
	Summary
	Alternatives []Alternative `json:"alternatives"`
}

type AlternativeInput struct {
	Description string `json:"description" validate:"notblank,max=2000"`
	IsCorrect   bool   `json:"isCorrect"`
}

// Input is the full-replace payload for Create and Update.
type Input struct {
	Title        string             `json:"title" validate:"notblank,max=500"`
	Discipline   string             `json:"discipline" validate:"notblank,max=200"`
	Subjects     []string           `json:"subjects" validate:"dive,notblank,max=200"`
	Alternatives []AlternativeInput `json:"alternatives" validate:"dive"`
}

// Filter narrows List. Empty fields are ignored; both set means both must hold.
type Filter struct {
	Discipline string // exact match
	Subject    string // exact match on the normalized subject key
}
