package practice

import (
	"math/rand"

	"github.com/studydeck/backend/internal/domain/question"
)

// Shuffle returns a new slice holding a uniformly random permutation of
// questions, produced with Fisher–Yates. The input is never mutated.
// The random source is injected so sessions can be made deterministic
// in tests.
func Shuffle(questions []question.Question, rng *rand.Rand) []question.Question {
	shuffled := make([]question.Question, len(questions))
	copy(shuffled, questions)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}
