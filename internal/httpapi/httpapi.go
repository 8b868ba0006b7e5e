// Package httpapi exposes the solve pipeline over HTTP using chi.
//
// Clients POST a CSV problem (the raw body) with solve options as query
// parameters and get back the solved CSV plus whatever render formats
// they asked for, or, for an infeasible problem, its irreducible
// infeasible subset. Each solve is recorded as a session whose ID the
// POST returns; the session can later be fetched again by that ID, and
// the iis route reports only the recorded session's status.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/minimalloc/pkg/alloc/csv"
	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/alloc/solve"
	"github.com/matzehuels/minimalloc/pkg/pipeline"
	"github.com/matzehuels/minimalloc/pkg/session"
)

var (
	errNoStore         = errors.New("no session store configured")
	errSessionNotFound = errors.New("session not found")
)

// Server wires a pipeline.Runner and a session.Store into an HTTP API.
type Server struct {
	Runner *pipeline.Runner
	Store  session.Store
	Logger *log.Logger
}

// Router builds the chi router for the API surface:
//
//	POST /problems                solve a CSV problem, return the solved CSV
//	GET  /problems/{id}/solution  fetch a previously computed session
//	GET  /problems/{id}/iis       fetch the IIS status for a session
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/problems", s.handleSolve)
	r.Get("/problems/{id}/solution", s.handleSolution)
	r.Get("/problems/{id}/iis", s.handleIIS)

	return r
}

type solveResponse struct {
	ID         string            `json:"id"`
	InputHash  string            `json:"input_hash"`
	Status     string            `json:"status"`
	Backtracks int               `json:"backtracks"`
	CacheHit   bool              `json:"cache_hit"`
	CSV        string            `json:"csv,omitempty"`
	IIS        []string          `json:"iis,omitempty"`
	Artifacts  map[string]string `json:"artifacts,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer r.Body.Close()

	q := r.URL.Query()
	var formats []string
	if f := q.Get("formats"); f != "" {
		formats = strings.Split(f, ",")
	}

	opts := pipeline.Options{
		Input:      string(body),
		Capacity:   parseInt64(q.Get("capacity")),
		Minimize:   q.Get("minimize") == "true",
		Params:     solve.DefaultParams(),
		ComputeIIS: q.Get("compute_iis") != "false",
		Formats:    formats,
		Logger:     s.Logger,
	}

	start := time.Now()
	result, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := s.recordSession(r, opts, result, start)

	resp := solveResponse{
		InputHash:  result.InputHash,
		Status:     result.Status.String(),
		Backtracks: result.Backtracks,
		CacheHit:   result.CacheInfo.SolveHit,
		IIS:        result.IIS,
	}
	if sess != nil {
		resp.ID = sess.ID
	}
	if result.Status == solve.StatusOk {
		if p, parseErr := csv.FromCSV(string(body)); parseErr == nil {
			resp.CSV = csv.ToCSV(p, &result.Solution, false)
		}
	}
	if len(result.Artifacts) > 0 {
		resp.Artifacts = make(map[string]string, len(result.Artifacts))
		for format, data := range result.Artifacts {
			resp.Artifacts[format] = string(data)
		}
	}

	status := http.StatusOK
	if result.Status != solve.StatusOk {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) recordSession(r *http.Request, opts pipeline.Options, result *pipeline.Result, start time.Time) *session.Session {
	if s.Store == nil {
		return nil
	}
	var sol *problem.Solution
	if result.Status == solve.StatusOk {
		got := result.Solution
		sol = &got
	}
	sess := session.New(result.InputHash, opts.KeyOpts(), result.Status.String(), result.Backtracks, time.Since(start), sol)
	if err := s.Store.Set(r.Context(), sess); err != nil {
		return nil
	}
	return sess
}

func (s *Server) handleSolution(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotImplemented, errNoStore)
		return
	}
	id := chi.URLParam(r, "id")
	sess, err := s.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, errSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleIIS(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotImplemented, errNoStore)
		return
	}
	id := chi.URLParam(r, "id")
	sess, err := s.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, errSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": sess.Status})
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
