package api

import (
	"encoding/json"
	"net/http"
	"time"

	"git.home.luguber.info/inful/semcheck/internal/pipeline"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

// AnalysisResult is the upload response body.
type AnalysisResult struct {
	ID             string   `json:"id,omitempty"`
	CorrectedHTML  string   `json:"corrected_html"`
	Errors         []string `json:"errors"`
	Score          float64  `json:"score"`
	CorrectedScore float64  `json:"corrected_score"`
	Encoding       string   `json:"encoding"`
}

func newAnalysisResult(id string, res *pipeline.Result) AnalysisResult {
	return AnalysisResult{
		ID:             id,
		CorrectedHTML:  res.CorrectedHTML,
		Errors:         res.Diagnostics,
		Score:          res.Score,
		CorrectedScore: res.CorrectedScore,
		Encoding:       res.Encoding,
	}
}

// AnalysisResponse is a stored analysis.
type AnalysisResponse struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Score          float64   `json:"score"`
	CorrectedScore float64   `json:"corrected_score"`
	Errors         []string  `json:"errors"`
	Encoding       string    `json:"encoding"`
	CreatedAt      time.Time `json:"created_at"`
}

func newAnalysisResponse(a *store.Analysis) AnalysisResponse {
	errs := a.Diagnostics
	if errs == nil {
		errs = []string{}
	}
	return AnalysisResponse{
		ID:             a.ID,
		Source:         a.Source,
		Score:          a.Score,
		CorrectedScore: a.CorrectedScore,
		Errors:         errs,
		Encoding:       a.Encoding,
		CreatedAt:      a.CreatedAt.UTC(),
	}
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *store.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt.UTC()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if s.errors.StatusCodeFor(err) == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	s.errors.WriteErrorResponse(w, r, err)
}
