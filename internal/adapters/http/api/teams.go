package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/teammate/internal/domain/types"
)

// TeamsDependencies defines the formation operations.
type TeamsDependencies interface {
	FormTeams(ctx context.Context, teamSize int, parallel bool) (types.Formation, error)
	LatestFormation(ctx context.Context) (types.Formation, error)
	DefaultTeamSize() int
}

// TeamsHandler handles formation requests.
type TeamsHandler struct {
	deps TeamsDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// formRequest is the body of POST /teams. An empty body forms teams of the
// default size in parallel.
type formRequest struct {
	TeamSize *int  `json:"team_size,omitempty"`
	Parallel *bool `json:"parallel,omitempty"`
}

// HandleForm handles POST /teams.
func (h *TeamsHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	const op = "api.form_teams"
	var req formRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	size := h.deps.DefaultTeamSize()
	if req.TeamSize != nil {
		size = *req.TeamSize
	}
	parallel := true
	if req.Parallel != nil {
		parallel = *req.Parallel
	}

	f, err := h.deps.FormTeams(r.Context(), size, parallel)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// HandleLatest handles GET /teams.
func (h *TeamsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	f, err := h.deps.LatestFormation(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.latest_teams", err))
		return
	}
	writeJSON(w, http.StatusOK, f)
}
