package taxonomy

import "sync"

// DefaultDomains returns the built-in domain table.
func DefaultDomains() []Domain {
	return []Domain{
		{
			Key:  "finance",
			Name: "Finance",
			Skills: []string{
				"Financial Analysis",
				"Risk Management",
				"Investment Strategies",
				"Market Knowledge",
				"Regulatory Compliance",
				"Financial Planning",
				"Budgeting",
				"Financial Reporting",
				"Portfolio Management",
				"Banking Operations",
			},
		},
		{
			Key:  "tech",
			Name: "Technology",
			Skills: []string{
				"Programming Languages",
				"System Design",
				"Best Practices",
				"Problem Solving",
				"Code Quality",
				"Security Practices",
				"Performance Optimization",
				"Database Management",
				"Cloud Technologies",
			},
		},
		{
			Key:  "hr",
			Name: "Human Resources",
			Skills: []string{
				"Recruitment",
				"Employee Relations",
				"Performance Management",
				"Training & Development",
				"Compensation & Benefits",
				"HR Policies",
				"Workplace Culture",
				"Conflict Resolution",
				"Legal Compliance",
				"Talent Development",
			},
		},
	}
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the built-in taxonomy, constructed once per process.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := New(DefaultDomains())
		if err != nil {
			panic("taxonomy: built-in table is invalid: " + err.Error())
		}
		defaultTax = t
	})
	return defaultTax
}
