package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amrixahmad/questionsmith/internal/grading"
	"github.com/amrixahmad/questionsmith/internal/quiz"
	"github.com/amrixahmad/questionsmith/internal/quizgen"
	"github.com/amrixahmad/questionsmith/internal/store"
)

type generateRequest struct {
	Text             string   `json:"text" validate:"required"`
	QuestionCount    int      `json:"questionCount" validate:"min=0,max=50"`
	Difficulty       string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	WithExplanations *bool    `json:"withExplanations"`
	Types            []string `json:"types"`
	Language         string   `json:"language" validate:"max=32"`
}

func (g generateRequest) params() quizgen.GenerationParams {
	p := quizgen.DefaultParams()
	p.QuestionCount = g.QuestionCount
	p.Difficulty = quiz.Difficulty(g.Difficulty)
	p.Language = g.Language
	if g.WithExplanations != nil {
		p.WithExplanations = *g.WithExplanations
	}
	if len(g.Types) > 0 {
		p.Types = make([]quiz.QuestionType, len(g.Types))
		for i, t := range g.Types {
			p.Types[i] = quiz.QuestionType(t)
		}
	}
	return p
}

type generateResponse struct {
	Quiz   quizView `json:"quiz"`
	Report string   `json:"report"`
}

// POST /quizzes/generate
func (s *Server) generateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.Generation.GenerateFromText(r.Context(), UserFrom(r.Context()), req.Text, req.params())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view := newQuizView(res.Quiz)
	view.Questions = make([]questionView, len(res.Questions))
	for i := range res.Questions {
		view.Questions[i] = newQuestionView(&res.Questions[i], true)
	}
	writeJSON(w, http.StatusCreated, generateResponse{Quiz: view, Report: res.Report.String()})
}

// GET /quizzes?limit=&offset=
func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request) {
	opts := store.ListOpts{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	quizzes, err := s.svc.Quizzes.List(r.Context(), UserFrom(r.Context()), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]quizView, len(quizzes))
	for i := range quizzes {
		out[i] = newQuizView(&quizzes[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /quizzes/{id}
func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Quizzes.Get(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuizDetailView(d, d.IsOwner))
}

func (s *Server) publishQuiz(w http.ResponseWriter, r *http.Request) {
	s.noContent(w, r, s.svc.Quizzes.Publish(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id")))
}

func (s *Server) unpublishQuiz(w http.ResponseWriter, r *http.Request) {
	s.noContent(w, r, s.svc.Quizzes.Unpublish(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id")))
}

func (s *Server) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	s.noContent(w, r, s.svc.Quizzes.Delete(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id")))
}

// PUT /quizzes/{id}/max-attempts {"maxAttempts": n}
func (s *Server) setMaxAttempts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxAttempts int `json:"maxAttempts" validate:"min=1,max=1000"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	s.noContent(w, r, s.svc.Quizzes.SetMaxAttempts(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"), req.MaxAttempts))
}

// POST /quizzes/{id}/attempts
func (s *Server) startAttempt(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Attempts.Start(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAttemptView(a, nil))
}

type submitRequest struct {
	Answers []struct {
		QuestionID string `json:"questionId" validate:"required"`
		Response   any    `json:"response"`
	} `json:"answers" validate:"dive"`
}

// POST /attempts/{id}/submit
func (s *Server) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	responses := make([]grading.SubmittedResponse, len(req.Answers))
	for i, a := range req.Answers {
		responses[i] = grading.SubmittedResponse{QuestionID: a.QuestionID, Response: a.Response}
	}
	card, err := s.svc.Attempts.Submit(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"), responses)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// GET /attempts/{id}
func (s *Server) getAttempt(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Attempts.Get(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAttemptView(d.Attempt, d.Answers))
}

// GET /attempts?quiz_id=
func (s *Server) listAttempts(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Attempts.List(r.Context(), UserFrom(r.Context()), strings.TrimSpace(r.URL.Query().Get("quiz_id")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]attemptView, len(list))
	for i := range list {
		out[i] = newAttemptView(&list[i], nil)
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /quizzes/{id}/share {"expiresInHours": n}
func (s *Server) createShareLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpiresInHours int `json:"expiresInHours" validate:"min=0,max=8760"`
	}
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	link, err := s.svc.Sharing.CreateLink(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"),
		time.Duration(req.ExpiresInHours)*time.Hour)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shareLinkView{
		Token:     link.Token,
		URL:       strings.TrimRight(s.opts.PublicBaseURL, "/") + "/s/" + link.Token,
		ExpiresAt: link.ExpiresAt,
		CreatedAt: link.CreatedAt,
	})
}

// DELETE /quizzes/{id}/share
func (s *Server) revokeShareLinks(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Sharing.Revoke(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"revoked": n})
}

// GET /s/{token} is public. It never includes canonical answers.
func (s *Server) openShared(w http.ResponseWriter, r *http.Request) {
	shared, err := s.svc.Sharing.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuizDetailView(&shared.QuizDetail, false))
}

func (s *Server) noContent(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
