package trophy

import "strconv"

// FlagSoloDifficult is set when a single guardian completes a mission of
// difficulty SoloDifficultyThreshold or higher.
const (
	FlagSoloDifficult       = "solo_difficult"
	SoloDifficultyThreshold = 3
)

func SquadSizeFlag(size int) string {
	return "squad_size_" + strconv.Itoa(size)
}
