package interview

// FallbackQuestions is served when question generation fails.
func FallbackQuestions() []Question {
	return []Question{
		{ID: "q1", Question: "Tell me about yourself and why you're interested in this role.", Category: "General", Difficulty: Easy,
			Tips: "Keep it concise, focus on relevant experience and show enthusiasm for the role."},
		{ID: "q2", Question: "Describe a challenging project you worked on and how you overcame obstacles.", Category: "Behavioral", Difficulty: Medium,
			Tips: "Use the STAR method: Situation, Task, Action, Result."},
		{ID: "q3", Question: "What are your greatest strengths and how do they apply to this position?", Category: "Experience", Difficulty: Easy,
			Tips: "Choose strengths that directly relate to the job requirements."},
		{ID: "q4", Question: "Where do you see yourself in 5 years?", Category: "General", Difficulty: Medium,
			Tips: "Show ambition while aligning with the company's growth opportunities."},
		{ID: "q5", Question: "Why do you want to work for this company?", Category: "Experience", Difficulty: Easy,
			Tips: "Research the company and mention specific values or projects that appeal to you."},
		{ID: "q6", Question: "Do you have any questions for us?", Category: "General", Difficulty: Easy,
			Tips: "Always have thoughtful questions prepared about the role, team, or company culture."},
	}
}

// MockReverseQuestions is the canned reverse-interview set.
func MockReverseQuestions() []ReverseQuestion {
	return []ReverseQuestion{
		{ID: "rev-1", Difficulty: Easy,
			Question:       "What would my day-to-day look like in the first month? Is there a structured onboarding plan?",
			Tips:           "Helps you understand practical integration and the support given to new hires.",
			ExpectedAnswer: "A structured onboarding program with introductions to the team, training on core systems and shadowing on live projects, then small tasks with regular check-ins."},
		{ID: "rev-2", Difficulty: Medium,
			Question:       "How does the team foster collaboration and knowledge sharing?",
			Tips:           "Shows interest in team dynamics and how the company invests in its people.",
			ExpectedAnswer: "Daily chat and a project tracker, stand-ups and weekly syncs, and pairing to spread knowledge."},
		{ID: "rev-3", Difficulty: Easy,
			Question:       "Are there opportunities for mentorship, cross-team learning, or career development programs?",
			Tips:           "Shows interest in professional growth within the organization.",
			ExpectedAnswer: "New hires are paired with a senior mentor, cross-functional projects are encouraged and there is a budget for courses and conferences."},
		{ID: "rev-4", Difficulty: Medium,
			Question:       "What are the key priorities for this role in the first 90 days?",
			Tips:           "Demonstrates proactivity and a wish to understand immediate expectations.",
			ExpectedAnswer: "Finish onboarding, contribute to at least one small project and build working relationships with the immediate team."},
		{ID: "rev-5", Difficulty: Medium,
			Question:       "How is performance typically evaluated for this role, both qualitatively and quantitatively?",
			Tips:           "Clarifies how your contributions will be assessed.",
			ExpectedAnswer: "Quarterly reviews combining delivery metrics with manager and peer feedback on collaboration and initiative."},
		{ID: "rev-6", Difficulty: Hard,
			Question:       "Can you describe the team's current biggest challenge and how a new hire might contribute to solving it?",
			Tips:           "Shows interest in making an impact and uncovers real team challenges.",
			ExpectedAnswer: "Integrating a new data pipeline with legacy systems; someone with strong scripting experience could speed that up by building connectors."},
	}
}

// MockFlashcards is the canned flashcard set.
func MockFlashcards() []Flashcard {
	return []Flashcard{
		{Question: "Tell me about your background and experience relevant to this role.",
			ExpectedAnswer: "Highlight the experience and skills from your resume that match the job requirements.",
			Difficulty:     "easy", Tags: []string{"background", "experience"}},
		{Question: "What specific projects have you worked on that demonstrate your skills?",
			ExpectedAnswer: "Walk through concrete projects from your resume that show relevant technical or professional skills.",
			Difficulty:     "medium", Tags: []string{"projects", "technical"}},
		{Question: "How would you handle a challenging situation in this role?",
			ExpectedAnswer: "Give a structured answer that shows problem solving and draws on relevant experience.",
			Difficulty:     "hard", Tags: []string{"behavioral", "problem-solving"}},
	}
}
