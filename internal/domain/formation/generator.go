package formation

import (
	"math/rand/v2"
	"slices"

	"github.com/okian/teammate/internal/domain/model"
)

// priority orders personality types for seeding: leaders, then thinkers,
// then everyone else.
func priority(p model.Participant) int {
	switch p.PersonalityType {
	case model.Leader:
		return 0
	case model.Thinker:
		return 1
	default:
		return 2
	}
}

// Attempt builds one candidate partition. It shuffles a private copy of
// participants with rng, stable-sorts it by personality priority so leaders
// and thinkers spread evenly, then deals members round-robin into
// ceil(n/teamSize) teams numbered from firstTeam. Only the last team may be
// short: the dealer skips teams that reached their capacity, so 10
// participants in teams of 3 end up as 3/3/3/1.
//
// participants is never modified and must not repeat ids. rng must not be
// shared with concurrent attempts.
func Attempt(participants []model.Participant, teamSize int, rng *rand.Rand, firstTeam int) ([]*model.Team, error) {
	if err := checkShape(participants, teamSize); err != nil {
		return nil, err
	}

	pool := slices.Clone(participants)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	teams := make([]*model.Team, TeamCount(len(pool), teamSize))
	for i := range teams {
		teams[i] = model.NewTeam(model.TeamID(firstTeam + i))
	}

	slices.SortStableFunc(pool, func(a, b model.Participant) int {
		return priority(a) - priority(b)
	})

	last := len(teams) - 1
	capacity := func(i int) int {
		if i == last {
			return len(pool) - teamSize*last
		}
		return teamSize
	}

	next := 0
	for _, p := range pool {
		for teams[next].Size() >= capacity(next) {
			next = (next + 1) % len(teams)
		}
		teams[next].AddMember(p)
		next = (next + 1) % len(teams)
	}
	return teams, nil
}
