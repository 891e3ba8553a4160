package domain

// fallbackQuestions is served when the authoritative store cannot be used.
var fallbackQuestions = []Question{
	{ID: "f1", Text: "What is the capital of France?", Options: []string{"London", "Berlin", "Paris", "Madrid"}, CorrectOption: 2},
	{ID: "f2", Text: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter", "Saturn"}, CorrectOption: 1},
	{ID: "f3", Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: 1},
	{ID: "f4", Text: "Who painted the Mona Lisa?", Options: []string{"Van Gogh", "Picasso", "Leonardo da Vinci", "Michelangelo"}, CorrectOption: 2},
	{ID: "f5", Text: "What is the largest mammal?", Options: []string{"Elephant", "Blue Whale", "Giraffe", "Hippo"}, CorrectOption: 1},
}

// FallbackQuestions returns a copy of the local fallback set, answers included.
// Only the scoring path may see this form; clients get FallbackPublic.
func FallbackQuestions() []Question {
	out := make([]Question, len(fallbackQuestions))
	for i, q := range fallbackQuestions {
		opts := make([]string, len(q.Options))
		copy(opts, q.Options)
		q.Options = opts
		out[i] = q
	}
	return out
}

// FallbackPublic returns the fallback set with correct answers stripped.
func FallbackPublic() []PublicQuestion {
	return PublicSet(fallbackQuestions)
}
