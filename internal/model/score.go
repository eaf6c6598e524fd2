package model

// ScoreBreakdown is the graded outcome. Derived, never mutated in place;
// recomputed whenever any upstream field changes.
type ScoreBreakdown struct {
	Contact  float64 `json:"contact"`
	Identity float64 `json:"identity"`
	Social   float64 `json:"social"`
	Content  float64 `json:"content"`
	Team     float64 `json:"team"`
	Intel    float64 `json:"intel"`
	Tech     float64 `json:"tech"`
	Score    float64 `json:"score"` // 0-100
	Grade    string  `json:"grade"` // A-F
}
