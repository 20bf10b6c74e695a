package quiz

import (
	"hash/fnv"
	"math/rand"
)

// optionPerm returns the display order for a question's options as seen by one
// user: displayed[i] = options[perm[i]]. The permutation is derived from the
// (user, day, question) triple, so the same user always sees the same order
// and a submitted display position can be mapped back when grading.
func optionPerm(userID, quizDayID, questionID string, n int) []int {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{'|'})
	h.Write([]byte(quizDayID))
	h.Write([]byte{'|'})
	h.Write([]byte(questionID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	return rng.Perm(n)
}

// applyPerm renders options in display order.
func applyPerm(options []string, perm []int) []string {
	out := make([]string, len(options))
	for i, j := range perm {
		out[i] = options[j]
	}
	return out
}

// originalIndex maps a display position back to the stored option index.
// Returns -1 for positions outside the option range.
func originalIndex(perm []int, displayPos int) int {
	if displayPos < 0 || displayPos >= len(perm) {
		return -1
	}
	return perm[displayPos]
}

// displayIndex maps a stored option index to the position the user saw it at.
// Returns -1 when the index is out of range.
func displayIndex(perm []int, origIdx int) int {
	for i, j := range perm {
		if j == origIdx {
			return i
		}
	}
	return -1
}
