package scoring

import "solana-holder-lab/internal/domain"

// HealthInput holds the figures the health score depends on.
type HealthInput struct {
	Top5Percentage    float64
	LPPercentage      float64
	BundledPercentage float64
	HolderCount       int
	DustPercentage    float64
}

// Health scores distribution health from 100 down, one deduction per factor.
func Health(in HealthInput) domain.HealthScore {
	score := 100

	switch {
	case in.Top5Percentage > 40:
		score -= 30
	case in.Top5Percentage > 30:
		score -= 20
	case in.Top5Percentage > 20:
		score -= 10
	}

	switch {
	case in.LPPercentage < 10:
		score -= 20
	case in.LPPercentage < 20:
		score -= 10
	}

	switch {
	case in.BundledPercentage > 20:
		score -= 25
	case in.BundledPercentage > 10:
		score -= 15
	case in.BundledPercentage > 5:
		score -= 5
	}

	switch {
	case in.HolderCount < 50:
		score -= 15
	case in.HolderCount < 100:
		score -= 10
	}

	if in.DustPercentage > 40 {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return domain.HealthScore{Score: score, Grade: Grade(score)}
}

// Grade maps a score to a letter.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 65:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}
