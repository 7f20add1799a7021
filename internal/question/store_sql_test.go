package question

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mind-engage/mindengage-qbank/internal/apperr"
	"github.com/mind-engage/mindengage-qbank/internal/db/dbtest"
)

func fiveAlternatives(correct int) []AlternativeInput {
	out := make([]AlternativeInput, RequiredAlternatives)
	for i := range out {
		out[i] = AlternativeInput{Description: string(rune('A' + i)), IsCorrect: i == correct}
	}
	return out
}

func newStore(t *testing.T) *SQLStore {
	t.Helper()
	return NewSQLStore(dbtest.Open(t))
}

func TestCreateGetRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	subjects := []string{"Geometry", "Álgebra", "Trigonometry"}
	created, err := s.Create(ctx, Input{
		Title:        "Area of a circle",
		Discipline:   "Math",
		Subjects:     subjects,
		Alternatives: fiveAlternatives(2),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected store-assigned id")
	}
	if len(created.Alternatives) != RequiredAlternatives {
		t.Fatalf("created alternatives = %d", len(created.Alternatives))
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got.Subjects, subjects) {
		t.Fatalf("subjects = %v, want %v", got.Subjects, subjects)
	}
	if !reflect.DeepEqual(got.Alternatives, created.Alternatives) {
		t.Fatalf("alternatives = %+v, want %+v", got.Alternatives, created.Alternatives)
	}
	for i, a := range got.Alternatives {
		if a.IsCorrect != (i == 2) {
			t.Fatalf("alternative %d correctness = %v", i, a.IsCorrect)
		}
	}
}

func TestCreateWithoutAlternatives(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	q, err := s.Create(ctx, Input{Title: "Essay", Discipline: "History"})
	if err != nil {
		t.Fatal(err)
	}
	if q.Subjects == nil || q.Alternatives == nil {
		t.Fatalf("create returned nil slices: %#v", q)
	}
	upd, err := s.Update(ctx, q.ID, Input{Title: "Essay", Discipline: "History"})
	if err != nil {
		t.Fatal(err)
	}
	if upd.Subjects == nil || upd.Alternatives == nil {
		t.Fatalf("update returned nil slices: %#v", upd)
	}
	got, err := s.Get(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Alternatives == nil || len(got.Alternatives) != 0 {
		t.Fatalf("alternatives = %#v, want empty slice", got.Alternatives)
	}
	if got.Subjects == nil || len(got.Subjects) != 0 {
		t.Fatalf("subjects = %#v, want empty slice", got.Subjects)
	}
}

func TestCreateValidation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	four := fiveAlternatives(0)[:4]
	twoCorrect := fiveAlternatives(0)
	twoCorrect[3].IsCorrect = true
	noneCorrect := fiveAlternatives(-1)
	blankAlt := fiveAlternatives(1)
	blankAlt[4].Description = "   "

	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"blank title", Input{Title: "  ", Discipline: "Math"}, "title"},
		{"missing discipline", Input{Title: "T"}, "discipline"},
		{"blank subject", Input{Title: "T", Discipline: "D", Subjects: []string{"a", " "}}, "subjects[1]"},
		{"duplicate subject", Input{Title: "T", Discipline: "D", Subjects: []string{"Math", " math "}}, "subjects"},
		{"four alternatives", Input{Title: "T", Discipline: "D", Alternatives: four}, "alternatives"},
		{"two correct", Input{Title: "T", Discipline: "D", Alternatives: twoCorrect}, "alternatives"},
		{"none correct", Input{Title: "T", Discipline: "D", Alternatives: noneCorrect}, "alternatives"},
		{"blank alternative", Input{Title: "T", Discipline: "D", Alternatives: blankAlt}, "alternatives[4].description"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := s.Create(ctx, c.in)
			ve, ok := apperr.AsValidation(err)
			if !ok {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if ve.Field != c.field {
				t.Fatalf("field = %q, want %q (%v)", ve.Field, c.field, ve)
			}
		})
	}

	list, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("invalid creates persisted %d rows", len(list))
	}
}

func TestGetNotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Get(context.Background(), 42)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	mk := func(title, discipline string, subjects ...string) int64 {
		t.Helper()
		q, err := s.Create(ctx, Input{Title: title, Discipline: discipline, Subjects: subjects})
		if err != nil {
			t.Fatal(err)
		}
		return q.ID
	}
	math := mk("q1", "Exact Sciences", "Math", "Logic")
	mathematics := mk("q2", "Exact Sciences", "Mathematics")
	art := mk("q3", "Humanities", "math")
	_ = mk("q4", "Humanities", "Cartography")

	ids := func(f Filter) []int64 {
		t.Helper()
		list, err := s.List(ctx, f)
		if err != nil {
			t.Fatal(err)
		}
		out := []int64{}
		for _, q := range list {
			if q.Subjects == nil {
				t.Fatalf("question %d listed with nil subjects", q.ID)
			}
			out = append(out, q.ID)
		}
		return out
	}

	cases := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"subject exact, case-insensitive", Filter{Subject: "Math"}, []int64{math, art}},
		{"no substring match", Filter{Subject: "art"}, []int64{}},
		{"longer label only", Filter{Subject: "mathematics"}, []int64{mathematics}},
		{"discipline exact", Filter{Discipline: "Exact Sciences"}, []int64{math, mathematics}},
		{"both filters", Filter{Discipline: "Humanities", Subject: "MATH"}, []int64{art}},
		{"discipline is case-sensitive", Filter{Discipline: "humanities"}, []int64{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ids(c.f); !reflect.DeepEqual(got, c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestUpdateReplacesAlternatives(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	q, err := s.Create(ctx, Input{Title: "T", Discipline: "D", Subjects: []string{"a"}, Alternatives: fiveAlternatives(0)})
	if err != nil {
		t.Fatal(err)
	}

	upd, err := s.Update(ctx, q.ID, Input{Title: "T2", Discipline: "D2", Subjects: []string{"b", "c"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Title != "T2" || len(upd.Alternatives) != 0 {
		t.Fatalf("update result = %+v", upd)
	}

	got, err := s.Get(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Alternatives) != 0 {
		t.Fatalf("alternatives after full replace = %d, want 0", len(got.Alternatives))
	}
	if !reflect.DeepEqual(got.Subjects, []string{"b", "c"}) {
		t.Fatalf("subjects = %v", got.Subjects)
	}

	// the subject index follows the replace
	list, err := s.List(ctx, Filter{Subject: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("stale subject still matches: %+v", list)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Update(context.Background(), 7, Input{Title: "T", Discipline: "D", Alternatives: fiveAlternatives(1)})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesChildren(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	q, err := s.Create(ctx, Input{Title: "T", Discipline: "D", Subjects: []string{"x"}, Alternatives: fiveAlternatives(4)})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, q.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	for _, table := range []string{"alternatives", "question_subjects"} {
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE question_id=$1`, q.ID).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Fatalf("%s rows left: %d", table, n)
		}
	}
	if err := s.Delete(ctx, q.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestDeleteReferencedByExamConflicts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	q, err := s.Create(ctx, Input{Title: "T", Discipline: "D", Alternatives: fiveAlternatives(0)})
	if err != nil {
		t.Fatal(err)
	}
	var examID int64
	if err := s.db.QueryRow(`INSERT INTO exams (title, discipline, created_at) VALUES ('E','D',0) RETURNING id`).Scan(&examID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`INSERT INTO exam_questions (exam_id, question_id, position) VALUES ($1,$2,0)`, examID, q.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, q.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	got, err := s.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("question must survive a refused delete: %v", err)
	}
	if len(got.Alternatives) != RequiredAlternatives {
		t.Fatalf("alternatives after refused delete = %d", len(got.Alternatives))
	}
}

func TestInputNotMutated(t *testing.T) {
	s := newStore(t)
	subjects := []string{"  padded  "}
	if _, err := s.Create(context.Background(), Input{Title: "T", Discipline: "D", Subjects: subjects}); err != nil {
		t.Fatal(err)
	}
	if subjects[0] != "  padded  " {
		t.Fatalf("caller slice rewritten: %q", subjects[0])
	}
}
