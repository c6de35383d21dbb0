// Package survey turns personality questionnaire answers into a
// personality score.
package survey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/teammate/internal/domain/model"
)

// Answer bounds on the Likert scale.
const (
	MinAnswer = 1
	MaxAnswer = 5

	scoreMultiplier = 4
)

// Questions are rated from 1 (strongly disagree) to 5 (strongly agree).
var Questions = [...]string{
	"I enjoy taking the lead and guiding others during group activities.",
	"I prefer analyzing situations and coming up with strategic solutions.",
	"I work well with others and enjoy collaborative teamwork.",
	"I am calm under pressure and can help maintain team morale.",
	"I like making quick decisions and adapting in dynamic situations.",
}

// Response is one completed questionnaire.
type Response struct {
	ParticipantID string
	answers       [len(Questions)]int
}

// NewResponse validates answers. An empty participantID gets a generated
// survey id.
func NewResponse(participantID string, answers []int) (Response, error) {
	if len(answers) != len(Questions) {
		return Response{}, fmt.Errorf("got %d answers, want %d: %w", len(answers), len(Questions), ErrInvalidAnswer)
	}
	r := Response{ParticipantID: strings.TrimSpace(participantID)}
	for i, a := range answers {
		if a < MinAnswer || a > MaxAnswer {
			return Response{}, fmt.Errorf("answer %d is %d, want %d-%d: %w", i+1, a, MinAnswer, MaxAnswer, ErrInvalidAnswer)
		}
		r.answers[i] = a
	}
	if r.ParticipantID == "" {
		r.ParticipantID = NewID()
	}
	return r, nil
}

// ParseAnswers reads a comma separated answer list such as "5,4,3,5,4".
func ParseAnswers(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", f, ErrInvalidAnswer)
		}
		out = append(out, n)
	}
	return out, nil
}

// NewID returns a fresh id for a participant enrolled through the survey.
func NewID() string {
	return "SURVEY-" + uuid.NewString()
}

// Answers returns a copy of the answers.
func (r Response) Answers() []int {
	return append([]int(nil), r.answers[:]...)
}

// Score is the answer sum times four, in 20-100.
func (r Response) Score() int {
	sum := 0
	for _, a := range r.answers {
		sum += a
	}
	return sum * scoreMultiplier
}

// Personality classifies the score. Scores under 50 fit no band.
func (r Response) Personality() (model.PersonalityType, error) {
	return model.ClassifyPersonality(r.Score())
}

// NewParticipant enrolls the respondent with the survey's personality
// score.
func (r Response) NewParticipant(name, email, game string, skill int, role model.Role) (model.Participant, error) {
	return model.NewParticipant(r.ParticipantID, name, email, game, skill, role, r.Score())
}
