package simulate

import (
	"fmt"
	"math"
)

// check returns one message per category whose average is not the
// half-up rounded mean of its skills, or that repeats a skill or category.
func check(p *Progress) []string {
	var problems []string
	seen := map[string]bool{}
	for _, c := range p.Categories {
		if seen[c.Name] {
			problems = append(problems, fmt.Sprintf("%s: category %q appears twice", p.UserID, c.Name))
		}
		seen[c.Name] = true

		if len(c.Skills) == 0 {
			problems = append(problems, fmt.Sprintf("%s/%s: category has no skills", p.UserID, c.Name))
			continue
		}
		skills := map[string]bool{}
		var total float64
		for _, s := range c.Skills {
			if skills[s.Name] {
				problems = append(problems, fmt.Sprintf("%s/%s: skill %q appears twice", p.UserID, c.Name, s.Name))
			}
			skills[s.Name] = true
			total += s.Score
		}
		want := math.Round(total / float64(len(c.Skills)))
		if c.AverageScore != want {
			problems = append(problems, fmt.Sprintf("%s/%s: average %.0f, skills give %.0f",
				p.UserID, c.Name, c.AverageScore, want))
		}
	}
	return problems
}
