// Package simulate drives a running service with random observations and
// checks every returned progress document for consistency.
package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Users        int           // Number of distinct users
	Observations int           // Number of observations to submit
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	UnknownRatio float64       // Share of observations with a skill outside the taxonomy
	Seed         int64         // Random seed; zero uses the clock
	Verbose      bool          // Log every inconsistency
}

// Domain mirrors one entry of GET /domains.
type Domain struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// Observation is the POST /observations body.
type Observation struct {
	ObservationID string  `json:"observationId"`
	UserID        string  `json:"userId"`
	DomainKey     string  `json:"domainKey"`
	SkillName     string  `json:"skillName"`
	Proficient    bool    `json:"proficient"`
	Score         float64 `json:"score"`
}

// Skill, Category and Progress mirror the progress document.
type Skill struct {
	Name       string  `json:"name"`
	Proficient bool    `json:"proficient"`
	Score      float64 `json:"score"`
}

type Category struct {
	Name         string  `json:"name"`
	AverageScore float64 `json:"average_score"`
	Skills       []Skill `json:"skills"`
}

type Progress struct {
	UserID     string     `json:"userId"`
	Categories []Category `json:"categories"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Stats holds run statistics.
type Stats struct {
	Generated     int
	Submitted     int
	Successful    int
	Rejected      int
	Failed        int
	Verified      int
	Inconsistent  int
	UsersChecked  int
	UsersMissing  int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	Inconsistency []string
}

// OK reports whether the run found no inconsistencies or transport failures.
func (s *Stats) OK() bool {
	return s.Inconsistent == 0 && s.Failed == 0
}
