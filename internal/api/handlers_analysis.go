package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/semcheck/internal/events"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
	"git.home.luguber.info/inful/semcheck/internal/report"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

const (
	// SourceRaw marks analyses submitted as form text.
	SourceRaw = "raw"

	defaultListLimit = 20
	maxListLimit     = 100
	formMemory       = 1 << 20
)

func bodyError(err error) error {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
		return errors.ValidationError("upload too large").Build()
	}
	return errors.WrapError(err, errors.CategoryValidation, "invalid form").Build()
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(formMemory)
	}
	return r.ParseForm()
}

func (s *Server) handleUploadByFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(formMemory); err != nil {
		if stderrors.Is(err, http.ErrNotMultipart) {
			s.fail(w, r, errors.ValidationError("multipart form with a file field is required").Build())
			return
		}
		s.fail(w, r, bodyError(err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, errors.ValidationError("file is required").Build())
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, bodyError(err))
		return
	}
	s.analyze(w, r, header.Filename, data)
}

func (s *Server) handleUploadByRaw(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		s.fail(w, r, bodyError(err))
		return
	}
	values, ok := r.PostForm["html_content"]
	if !ok || len(values) == 0 {
		s.fail(w, r, errors.ValidationError("html_content is required").Build())
		return
	}
	s.analyze(w, r, SourceRaw, []byte(values[0]))
}

// analyze runs the pipeline and, for authenticated callers, stores the result
// and publishes an event in the background. Publish failures are only logged.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, source string, data []byte) {
	ctx := r.Context()
	res, err := s.deps.Pipeline.Process(ctx, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var id string
	if user, ok := UserFromContext(ctx); ok {
		a := &store.Analysis{
			ID:             uuid.NewString(),
			UserID:         user.ID,
			Source:         source,
			Score:          res.Score,
			CorrectedScore: res.CorrectedScore,
			Diagnostics:    res.Diagnostics,
			Encoding:       res.Encoding,
			CreatedAt:      time.Now(),
		}
		if err := s.deps.Analyses.SaveAnalysis(ctx, a); err != nil {
			s.fail(w, r, err)
			return
		}
		id = a.ID

		event := events.AnalysisEvent{
			ID:             a.ID,
			UserID:         a.UserID,
			Source:         a.Source,
			Score:          a.Score,
			CorrectedScore: a.CorrectedScore,
			FailedRules:    res.FailedRules,
			Remaining:      len(res.Remaining),
			Encoding:       a.Encoding,
			Timestamp:      a.CreatedAt,
		}
		s.publishAsync(ctx, event)
		s.logger.Info("Analysis stored",
			logfields.AnalysisID(a.ID),
			logfields.UserID(user.ID),
			logfields.Score(a.Score))
	}

	writeJSON(w, http.StatusOK, newAnalysisResult(id, res))
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.fail(w, r, errors.ValidationError("limit must be a positive integer").Build())
			return
		}
		limit = min(n, maxListLimit)
	}

	list, err := s.deps.Analyses.ListAnalyses(r.Context(), user.ID, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]AnalysisResponse, 0, len(list))
	for _, a := range list {
		out = append(out, newAnalysisResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// ownedAnalysis loads the analysis named in the URL. Analyses owned by other
// users are reported as not found.
func (s *Server) ownedAnalysis(r *http.Request) (*store.Analysis, error) {
	user, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	a, err := s.deps.Analyses.GetAnalysis(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if a.UserID != user.ID {
		return nil, store.ErrNotFound.WithContext("id", id)
	}
	return a, nil
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.ownedAnalysis(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(a))
}

func (s *Server) handleAnalysisReport(w http.ResponseWriter, r *http.Request) {
	a, err := s.ownedAnalysis(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := report.HTML(a)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// publishAsync delivers e in the background on a context detached from the
// request. Shutdown waits for these deliveries.
func (s *Server) publishAsync(ctx context.Context, e events.AnalysisEvent) {
	s.publishes.Add(1)
	go func() {
		defer s.publishes.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.PublishTimeout)
		defer cancel()
		if err := s.deps.Publisher.PublishAnalysis(pctx, e); err != nil {
			s.logger.Warn("Failed to publish analysis event", logfields.AnalysisID(e.ID), logfields.Error(err))
		}
	}()
}
