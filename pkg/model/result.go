package model

import "time"

// ScheduleResult is a committed schedule in commit order.
type ScheduleResult struct {
	Schedule []Task `json:"schedule"`
	Makespan int    `json:"makespan"`
}

// ScheduleMetrics summarizes the quality of a committed schedule.
type ScheduleMetrics struct {
	// MachineUtilization maps machine id to busy time / makespan * 100.
	MachineUtilization map[int]float64 `json:"machineUtilization"`
	AverageWaitTime    float64         `json:"averageWaitTime"`

	// LongestJob is the job with the largest total processing time, its
	// tasks ordered by start time.
	LongestJob []Task `json:"longestJob"`

	// CriticalPath is the chain of back-to-back tasks, linked by job order
	// or machine order, that ends at the makespan.
	CriticalPath []Task `json:"criticalPath"`

	Recommendations []Recommendation `json:"recommendations,omitempty"`

	// Prediction is nil for an empty schedule.
	Prediction *SchedulePrediction `json:"prediction,omitempty"`
}

// SchedulePrediction estimates when a schedule started now would finish and
// how far to trust that estimate. One time unit is one minute.
type SchedulePrediction struct {
	CompletionTime time.Time `json:"completionTime"`
	Confidence     int       `json:"confidence"`
	RiskFactors    []string  `json:"riskFactors"`
}

// RecommendationType classifies a Recommendation.
type RecommendationType string

const (
	RecommendationCritical    RecommendationType = "critical"
	RecommendationWarning     RecommendationType = "warning"
	RecommendationImprovement RecommendationType = "improvement"
)

// Recommendation is an efficiency hint derived from a schedule.
type Recommendation struct {
	Type                 RecommendationType `json:"type"`
	Title                string             `json:"title"`
	Description          string             `json:"description"`
	PotentialImprovement int                `json:"potentialImprovement"`
}

// ScheduleOutcome is the result of one scheduling invocation. When
// Infeasible is set, Result holds the partial schedule and Remaining lists
// the IDs of tasks that could never become ready.
type ScheduleOutcome struct {
	Result     ScheduleResult  `json:"result"`
	Metrics    ScheduleMetrics `json:"metrics"`
	Algorithm  Algorithm       `json:"algorithm"`
	Infeasible bool            `json:"infeasible"`
	Remaining  []string        `json:"remaining,omitempty"`
}
