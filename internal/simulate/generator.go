package simulate

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

const unknownSkill = "Underwater Basket Weaving"

// generate creates cfg.Observations random observations spread over
// cfg.Users users and every domain. Scores are whole numbers in [0,100].
func generate(cfg *Config, domains []Domain, rng *rand.Rand) []Observation {
	users := make([]string, cfg.Users)
	for i := range users {
		users[i] = fmt.Sprintf("sim-%s", uuid.NewString()[:8])
	}

	out := make([]Observation, cfg.Observations)
	for i := range out {
		d := domains[rng.Intn(len(domains))]
		skill := d.Skills[rng.Intn(len(d.Skills))]
		if rng.Float64() < cfg.UnknownRatio {
			skill = unknownSkill
		}
		score := float64(rng.Intn(101))
		out[i] = Observation{
			ObservationID: uuid.NewString(),
			UserID:        users[rng.Intn(len(users))],
			DomainKey:     d.Key,
			SkillName:     skill,
			Proficient:    score >= 70,
			Score:         score,
		}
	}
	return out
}
