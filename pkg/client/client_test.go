package client

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	api "github.com/mind-engage/mindengage-qbank/internal/api/http"
	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/db/dbtest"
	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/question"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := dbtest.Open(t)
	users := auth.NewUserStore(h)
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := users.Upsert(context.Background(), "Author", "author@example.com", string(hash)); err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	api.Mount(r, api.Deps{
		DB:        h,
		Questions: question.NewSQLStore(h),
		Exams:     exam.NewSQLStore(h),
		Auth:      auth.NewAuthService("client-test", "qbank", time.Hour),
		Users:     users,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	anon := New(Config{BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
	res, err := anon.Login(context.Background(), "author@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.Email != "author@example.com" || res.Token == "" {
		t.Fatalf("login = %+v", res)
	}
	return anon.WithToken(res.Token)
}

func alternatives(correct int) []Alternative {
	out := make([]Alternative, 5)
	for i := range out {
		out[i] = Alternative{Description: string(rune('a' + i)), IsCorrect: i == correct}
	}
	return out
}

func TestAnonymousIsRejected(t *testing.T) {
	srv := newServer(t)
	c := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.ListQuestions(context.Background(), QuestionFilter{})
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Fatalf("want 401 APIError, got %v", err)
	}

	if _, err := c.Login(context.Background(), "author@example.com", "nope"); !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		t.Fatalf("bad password: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	srv := newServer(t)
	c := login(t, srv)
	ctx := context.Background()

	q1, err := c.CreateQuestion(ctx, QuestionInput{
		Title: "2+2", Discipline: "Math", Subjects: []string{"Arithmetic"}, Alternatives: alternatives(3),
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if len(q1.Alternatives) != 5 || q1.Alternatives[0].ID == 0 {
		t.Fatalf("alternatives = %+v", q1.Alternatives)
	}
	q2, err := c.CreateQuestion(ctx, QuestionInput{Title: "Essay", Discipline: "History", Subjects: []string{"Rome"}})
	if err != nil {
		t.Fatalf("create open question: %v", err)
	}

	list, err := c.ListQuestions(ctx, QuestionFilter{Subject: "arithmetic"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != q1.ID {
		t.Fatalf("filtered list = %+v", list)
	}

	q2, err = c.UpdateQuestion(ctx, q2.ID, QuestionInput{Title: "Essay v2", Discipline: "History", Subjects: []string{"Rome"}})
	if err != nil {
		t.Fatal(err)
	}
	if got, err := c.GetQuestion(ctx, q2.ID); err != nil || got.Title != "Essay v2" {
		t.Fatalf("get = %+v, %v", got, err)
	}

	e, err := c.CreateExam(ctx, ExamInput{Title: "Final", Discipline: "Mixed", QuestionIDs: []int64{q2.ID, q1.ID}})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	got, err := c.GetExam(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.QuestionCount != 2 || len(got.Questions) != 2 || got.Questions[0].ID != q2.ID {
		t.Fatalf("exam = %+v", got)
	}

	if _, err := c.UpdateExam(ctx, e.ID, ExamInput{Title: "Final", Discipline: "Mixed", QuestionIDs: []int64{q1.ID}}); err != nil {
		t.Fatal(err)
	}
	exams, err := c.ListExams(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(exams) != 1 || exams[0].QuestionCount != 1 {
		t.Fatalf("exams = %+v", exams)
	}

	pkg, err := c.ExportExam(ctx, e.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg))); err != nil {
		t.Fatalf("export is not a zip: %v", err)
	}

	st, err := c.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalQuestions != 2 || st.TotalExams != 1 {
		t.Fatalf("stats = %+v", st)
	}

	err = c.DeleteQuestion(ctx, q1.ID)
	var ae *APIError
	if !errors.As(err, &ae) || ae.Status != http.StatusConflict {
		t.Fatalf("delete linked question: %v", err)
	}
	if err := c.DeleteExam(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteQuestion(ctx, q1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetQuestion(ctx, q1.ID); !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
		t.Fatalf("get deleted: %v", err)
	}
}

func TestServerValidationSurfacesField(t *testing.T) {
	srv := newServer(t)
	c := login(t, srv)
	_, err := c.CreateExam(context.Background(), ExamInput{Title: "E", Discipline: "D", QuestionIDs: []int64{42}})
	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("want APIError, got %v", err)
	}
	if ae.Status != http.StatusBadRequest || ae.Field != "questionIds" || ae.Reason != "unknown question id 42" {
		t.Fatalf("api error = %+v", ae)
	}
}

func TestValidateQuestion(t *testing.T) {
	ok := QuestionInput{Title: "T", Discipline: "D", Subjects: []string{"S"}, Alternatives: alternatives(0)}
	if err := ValidateQuestion(ok); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
	open := QuestionInput{Title: "T", Discipline: "D", Subjects: []string{"S"}}
	if err := ValidateQuestion(open); err != nil {
		t.Fatalf("open question rejected: %v", err)
	}

	twoCorrect := ok
	twoCorrect.Alternatives = alternatives(0)
	twoCorrect.Alternatives[4].IsCorrect = true

	cases := map[string]struct {
		in    QuestionInput
		field string
	}{
		"no title":      {QuestionInput{Discipline: "D", Subjects: []string{"S"}}, "Title"},
		"no subjects":   {QuestionInput{Title: "T", Discipline: "D"}, "Subjects"},
		"four choices":  {QuestionInput{Title: "T", Discipline: "D", Subjects: []string{"S"}, Alternatives: alternatives(0)[:4]}, "Alternatives"},
		"two correct":   {twoCorrect, "Alternatives"},
		"blank subject": {QuestionInput{Title: "T", Discipline: "D", Subjects: []string{""}}, "Subjects[0]"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			var fe *FormError
			if err := ValidateQuestion(c.in); !errors.As(err, &fe) || fe.Field != c.field {
				t.Fatalf("want FormError on %s, got %v", c.field, err)
			}
		})
	}
}

func TestValidateExam(t *testing.T) {
	if err := ValidateExam(ExamInput{Title: "T", Discipline: "D", QuestionIDs: []int64{1, 2}}); err != nil {
		t.Fatal(err)
	}
	for name, in := range map[string]ExamInput{
		"empty":     {Title: "T", Discipline: "D"},
		"duplicate": {Title: "T", Discipline: "D", QuestionIDs: []int64{1, 1}},
		"zero":      {Title: "T", Discipline: "D", QuestionIDs: []int64{0}},
	} {
		var fe *FormError
		if err := ValidateExam(in); !errors.As(err, &fe) {
			t.Fatalf("%s: want FormError, got %v", name, err)
		}
	}
}
