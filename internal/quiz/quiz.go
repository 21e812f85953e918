// Package quiz holds the fixed waste-sorting question set and scores
// submissions against its answer key.
package quiz

// GameName is the label recorded with every result of this quiz.
const GameName = "preguntas"

// Question is one multiple-choice question with exactly one correct answer.
type Question struct {
	ID      string
	Prompt  string
	Options []string
	Answer  string
}

var questions = []Question{
	{
		ID:      "q1",
		Prompt:  "¿Qué va en la caneca blanca?",
		Options: []string{"Papel", "Vidrio", "Orgánico"},
		Answer:  "Vidrio",
	},
	{
		ID:      "q2",
		Prompt:  "¿Qué va en la caneca verde?",
		Options: []string{"Orgánico", "Plástico", "Papel"},
		Answer:  "Orgánico",
	},
	{
		ID:      "q3",
		Prompt:  "¿Qué va en la caneca negra?",
		Options: []string{"Restos no reciclables", "Plástico", "Metal"},
		Answer:  "Restos no reciclables",
	},
}

// Questions returns the ordered question set. The slice is copied so
// callers cannot mutate the answer key.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Score counts exact answer matches in a submission keyed by question id.
// Missing and unknown ids contribute zero; comparison is case-sensitive.
func Score(submission map[string]string) int {
	score := 0
	for _, q := range questions {
		if submission[q.ID] == q.Answer {
			score++
		}
	}
	return score
}
