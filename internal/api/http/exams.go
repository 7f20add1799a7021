package http

import (
	"fmt"
	"net/http"

	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/qti/export"
	"github.com/mind-engage/mindengage-qbank/internal/question"
)

func CreateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in exam.Input
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		e, err := store.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func ListExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		e, err := store.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func UpdateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var in exam.Input
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		e, err := store.Update(r.Context(), id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func DeleteExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /exams/{id}/export -> QTI 2.1 zip
func ExportExamHandler(exams exam.Store, questions question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		e, err := exams.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		full := make([]question.Question, 0, len(e.QuestionIDs))
		for _, qid := range e.QuestionIDs {
			q, err := questions.Get(r.Context(), qid)
			if err != nil {
				writeError(w, r, err)
				return
			}
			full = append(full, q)
		}
		pkg, err := export.BuildPackage(e, full)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-%d-qti.zip"`, e.ID))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pkg)
	}
}

func DashboardHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Stats(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
