// Package sample generates valid synthetic rosters for demos, tests and
// benchmarks.
package sample

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/teammate/internal/domain/model"
)

// Games offered by the generator.
var Games = []string{"Chess", "FIFA", "Basketball", "CS:GO", "DOTA 2", "Valorant"}

var firstNames = []string{
	"Ada", "Bilal", "Chen", "Dara", "Emeka", "Farah", "Goran", "Hana", "Ines", "Jun",
	"Kofi", "Lena", "Mateo", "Nia", "Omar", "Priya", "Quinn", "Rosa", "Sami", "Tomas",
}

// Personality bands are drawn with these weights: leaders are rare,
// balanced members common.
const (
	leaderWeight   = 20
	thinkerWeight  = 30
	balancedWeight = 50
)

// Generator produces participants from a deterministic stream.
type Generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
}

// New returns a generator. The same seed always yields the same roster.
func New(seed uint64) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	return &Generator{src: src, rng: rand.New(src)}
}

// Participant returns one valid random participant.
func (g *Generator) Participant() model.Participant {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 reads never fail.
		panic(err)
	}
	name := fmt.Sprintf("%s %03d", firstNames[g.rng.IntN(len(firstNames))], g.rng.IntN(1000))
	roles := model.Roles()

	p, err := model.NewParticipant(
		id.String(),
		name,
		fmt.Sprintf("player-%s@club.test", id.String()[:8]),
		Games[g.rng.IntN(len(Games))],
		model.MinSkill+g.rng.IntN(model.MaxSkill-model.MinSkill+1),
		roles[g.rng.IntN(len(roles))],
		g.personalityScore(),
	)
	if err != nil {
		panic(fmt.Sprintf("sample: generated invalid participant: %v", err))
	}
	return p
}

// Roster returns n participants.
func (g *Generator) Roster(n int) []model.Participant {
	out := make([]model.Participant, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, g.Participant())
	}
	return out
}

func (g *Generator) personalityScore() int {
	switch r := g.rng.IntN(leaderWeight + thinkerWeight + balancedWeight); {
	case r < leaderWeight:
		return 90 + g.rng.IntN(11)
	case r < leaderWeight+thinkerWeight:
		return 50 + g.rng.IntN(20)
	default:
		return 70 + g.rng.IntN(20)
	}
}

// Roster is a convenience for New(seed).Roster(n).
func Roster(seed uint64, n int) []model.Participant {
	return New(seed).Roster(n)
}
