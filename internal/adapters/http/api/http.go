// Package api exposes enrollment and team formation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/teammate/internal/adapters/csvio"
	"github.com/okian/teammate/internal/adapters/repository"
	"github.com/okian/teammate/internal/domain/formation"
	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/types"
	"github.com/okian/teammate/internal/survey"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Enroll(ctx context.Context, p model.Participant) error
	ImportCSV(ctx context.Context, r io.Reader) (*types.ImportResult, error)
	Participants(ctx context.Context) []model.Participant

	FormTeams(ctx context.Context, teamSize int, parallel bool) (types.Formation, error)
	LatestFormation(ctx context.Context) (types.Formation, error)
	DefaultTeamSize() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	participantsHandler *ParticipantsHandler
	teamsHandler        *TeamsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		participantsHandler: NewParticipantsHandler(deps),
		teamsHandler:        NewTeamsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /strategy", MetricsMiddleware(s.statsHandler.HandleStrategy, "strategy"))
	mux.HandleFunc("GET /participants", MetricsMiddleware(s.participantsHandler.HandleList, "participants"))
	mux.HandleFunc("POST /participants", MetricsMiddleware(s.participantsHandler.HandleEnroll, "participants"))
	mux.HandleFunc("POST /participants/import", MetricsMiddleware(s.participantsHandler.HandleImport, "participants_import"))
	mux.HandleFunc("GET /teams", MetricsMiddleware(s.teamsHandler.HandleLatest, "teams"))
	mux.HandleFunc("POST /teams", MetricsMiddleware(s.teamsHandler.HandleForm, "teams"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status through its kind.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, formation.ErrInvalidTeamSize),
		errors.Is(err, formation.ErrNoParticipants),
		errors.Is(err, formation.ErrDuplicateParticipant),
		errors.Is(err, model.ErrInvalidParticipant),
		errors.Is(err, model.ErrInvalidRole),
		errors.Is(err, model.ErrInvalidPersonalityScore),
		errors.Is(err, survey.ErrInvalidAnswer),
		errors.Is(err, csvio.ErrInvalidHeader),
		errors.Is(err, csvio.ErrNoRows):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrConflict), errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, formation.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
