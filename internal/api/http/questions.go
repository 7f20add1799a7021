package http

import (
	"net/http"

	"github.com/mind-engage/mindengage-qbank/internal/question"
)

func CreateQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in question.Input
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		q, err := store.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// GET /questions?discipline=&subject=
func ListQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context(), question.Filter{
			Discipline: r.URL.Query().Get("discipline"),
			Subject:    r.URL.Query().Get("subject"),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		q, err := store.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func UpdateQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var in question.Input
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		q, err := store.Update(r.Context(), id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeleteQuestionHandler(store question.Store) http.HandlerFunc {
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
