package domain

// HealthScore is the composite distribution health metric.
type HealthScore struct {
	Score int    `json:"score"` // 0-100
	Grade string `json:"grade"` // A, B, C, D or F
}
