package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/teammate/internal/domain/model"
	"github.com/okian/teammate/internal/domain/types"
	"github.com/okian/teammate/internal/survey"
)

// maxImportBytes bounds an uploaded roster.
const maxImportBytes = 8 << 20

// ParticipantsDependencies defines the roster operations.
type ParticipantsDependencies interface {
	Enroll(ctx context.Context, p model.Participant) error
	ImportCSV(ctx context.Context, r io.Reader) (*types.ImportResult, error)
	Participants(ctx context.Context) []model.Participant
}

// ParticipantsHandler handles roster requests.
type ParticipantsHandler struct {
	deps ParticipantsDependencies
}

// NewParticipantsHandler creates a new participants handler.
func NewParticipantsHandler(deps ParticipantsDependencies) *ParticipantsHandler {
	return &ParticipantsHandler{deps: deps}
}

// participantRequest is the body of POST /participants. Either
// personality_score or the five survey answers must be given.
type participantRequest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	PreferredGame    string `json:"preferred_game"`
	SkillLevel       int    `json:"skill_level"`
	PreferredRole    string `json:"preferred_role"`
	PersonalityScore *int   `json:"personality_score,omitempty"`
	Answers          []int  `json:"answers,omitempty"`
}

func (req participantRequest) participant() (model.Participant, error) {
	role, err := model.ParseRole(req.PreferredRole)
	if err != nil {
		return model.Participant{}, err
	}
	if len(req.Answers) > 0 {
		resp, err := survey.NewResponse(req.ID, req.Answers)
		if err != nil {
			return model.Participant{}, err
		}
		return resp.NewParticipant(req.Name, req.Email, req.PreferredGame, req.SkillLevel, role)
	}
	if req.PersonalityScore == nil {
		return model.Participant{}, fmt.Errorf("personality_score or answers required: %w", ErrBadRequest)
	}
	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = survey.NewID()
	}
	return model.NewParticipant(id, req.Name, req.Email, req.PreferredGame, req.SkillLevel, role, *req.PersonalityScore)
}

// HandleEnroll handles POST /participants.
func (h *ParticipantsHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	const op = "api.enroll"
	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := req.participant()
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if err := h.deps.Enroll(r.Context(), p); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, types.NewParticipantView(p))
}

// HandleList handles GET /participants.
func (h *ParticipantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ParticipantViews(h.deps.Participants(r.Context())))
}

// HandleImport handles POST /participants/import. The body is either a raw
// CSV roster or a multipart form with the roster in the "file" field.
func (h *ParticipantsHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var body io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		f, _, err := r.FormFile("file")
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		defer f.Close()
		body = f
	}

	res, err := h.deps.ImportCSV(r.Context(), body)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
