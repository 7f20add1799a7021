package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/question"
)

type Deps struct {
	DB        *sql.DB
	Questions question.Store
	Exams     exam.Store
	Auth      *auth.AuthService
	Users     *auth.UserStore
}

// Mount registers the public and bearer-protected routes on r. Cross-cutting
// middleware (request id, logging, CORS, timeouts) is the caller's.
func Mount(r chi.Router, d Deps) {
	r.Post("/login", auth.LoginHandler(d.Auth, d.Users))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "store unavailable"})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.Route("/questions", func(qr chi.Router) {
			qr.Post("/", CreateQuestionHandler(d.Questions))
			qr.Get("/", ListQuestionsHandler(d.Questions))
			qr.Get("/{id}", GetQuestionHandler(d.Questions))
			qr.Put("/{id}", UpdateQuestionHandler(d.Questions))
			qr.Delete("/{id}", DeleteQuestionHandler(d.Questions))
		})

		pr.Route("/exams", func(er chi.Router) {
			er.Post("/", CreateExamHandler(d.Exams))
			er.Get("/", ListExamsHandler(d.Exams))
			er.Get("/{id}", GetExamHandler(d.Exams))
			er.Put("/{id}", UpdateExamHandler(d.Exams))
			er.Delete("/{id}", DeleteExamHandler(d.Exams))
			er.Get("/{id}/export", ExportExamHandler(d.Exams, d.Questions))
		})

		pr.Get("/dashboard", DashboardHandler(d.Exams))
	})
}
