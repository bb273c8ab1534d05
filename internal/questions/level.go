package questions

// Difficulty is the level questions are calibrated to.
type Difficulty string

const (
	Basic        Difficulty = "basic"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// DifficultyFor maps years of experience to a difficulty level.
func DifficultyFor(years float64) Difficulty {
	switch {
	case years < 2:
		return Basic
	case years < 5:
		return Intermediate
	default:
		return Advanced
	}
}

func (d Difficulty) describe() string {
	switch d {
	case Basic:
		return "a junior candidate (under 2 years of experience): focus on fundamentals and core concepts"
	case Intermediate:
		return "a mid-level candidate (2 to 5 years of experience): focus on practical usage, trade-offs and debugging"
	default:
		return "a senior candidate (5+ years of experience): focus on architecture, performance and edge cases"
	}
}
