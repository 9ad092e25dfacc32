package interview

import "github.com/okian/intervue/internal/adapters/llm"

func object(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

var (
	str     = map[string]any{"type": "string"}
	num     = map[string]any{"type": "number"}
	boolean = map[string]any{"type": "boolean"}
	strList = map[string]any{"type": "array", "items": str}
)

func listOf(field string, item map[string]any) map[string]any {
	return object(map[string]any{field: map[string]any{"type": "array", "items": item}})
}

var evaluationSchema = &llm.Schema{
	Name:        "answer_evaluation",
	Description: "Evaluation of one interview answer",
	Definition: object(map[string]any{
		"isCorrect": boolean,
		"feedback":  str,
		"score":     num,
	}),
}

var categorizationSchema = &llm.Schema{
	Name:        "skill_categorization",
	Description: "Skill an answer demonstrates",
	Definition: object(map[string]any{
		"skillName":  str,
		"proficient": boolean,
		"score":      num,
	}),
}

var questionsSchema = &llm.Schema{
	Name: "interview_questions",
	Definition: listOf("questions", object(map[string]any{
		"id":         str,
		"question":   str,
		"category":   str,
		"difficulty": str,
		"tips":       str,
	})),
}

var reverseQuestionsSchema = &llm.Schema{
	Name: "reverse_interview_questions",
	Definition: listOf("questions", object(map[string]any{
		"id":             str,
		"question":       str,
		"difficulty":     str,
		"tips":           str,
		"expectedAnswer": str,
	})),
}

var flashcardsSchema = &llm.Schema{
	Name: "flashcards",
	Definition: listOf("flashcards", object(map[string]any{
		"question":       str,
		"expectedAnswer": str,
		"difficulty":     str,
		"tags":           strList,
	})),
}
