package interview

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`
{{define "evaluate"}}Evaluate this interview answer.

QUESTION: {{.Question}}
EXPECTED ANSWER: {{.ExpectedAnswer}}
CANDIDATE ANSWER: {{.Answer}}

Judge accuracy, completeness, relevance, clarity and professional
presentation. Return isCorrect, detailed feedback on what was good and what
could be improved, and a score from 0 to 100.{{end}}

{{define "categorize"}}Categorize this interview exchange for progress tracking.

QUESTION: {{.Question}}
CANDIDATE ANSWER: {{.Answer}}
SCORE: {{.Score}}
DOMAIN: {{.Domain}}
AVAILABLE SKILLS: {{join .Skills ", "}}

Pick the single skill from the list that the question exercises, using its
exact name. The candidate is proficient when the score is {{.Threshold}} or
higher. Echo the score unchanged.{{end}}

{{define "questions"}}You are an interview coach. Write 6 personalised questions for a {{.Level}} candidate based strictly on the resume below.

RESUME:
{{.Resume}}

JOB DESCRIPTION (context only):
{{.JobDescription}}

Rules:
- Ask only about technologies, projects and experience written in the resume.
- Never ask about something that appears in the job description but not the resume.
- Do not use placeholder text such as [technology] or [project].

Difficulty mix: Basic {{.Mix.Basic}}, Easy {{.Mix.Easy}}, Medium {{.Mix.Medium}}, Hard {{.Mix.Hard}}.
Each question has an id, the question, a category (Technical, Behavioral, Experience or General), a difficulty and a short tip.{{end}}

{{define "reverse"}}You are a candidate in the last minutes of an interview for the role below. Write 10 short, non-technical questions to ask the interviewer about day-to-day work, team structure, growth, culture, work-life balance and next steps.

JOB DESCRIPTION:
{{.JobDescription}}

Each question has an id, the question, a difficulty (Basic, Easy, Medium or Hard), a tip on why to ask it and a realistic expectedAnswer an interviewer might give.{{end}}

{{define "flashcards"}}Write {{.Count}} interview flashcards that help this candidate prepare for this role.

RESUME:
{{.Resume}}

JOB DESCRIPTION:
{{.JobDescription}}

Mix behavioral, technical and situational questions grounded in the resume and relevant to the job. Each card has a question, an expectedAnswer, a difficulty of easy, medium or hard and a list of tags.{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}
