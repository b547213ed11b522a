package metrics

import (
	"math"
	"time"

	"github.com/me/shopfloor/pkg/model"
)

const (
	riskMachineCount     = 3
	riskTaskDuration     = 10
	confidencePerMachine = 5
	confidencePerTask    = 2
)

// Risk factor messages reported by Predict.
const (
	RiskMachineCoordination = "Complex machine coordination required"
	RiskLongTasks           = "Long-duration tasks present"
	RiskUnevenWorkload      = "Uneven machine workload distribution"
)

// Predict estimates the completion time of schedule when started at now,
// treating one time unit as one minute. Confidence drops by 5 per machine
// and 2 per task, clamped to [0, 100].
func Predict(schedule []model.Task, makespan int, now time.Time) model.SchedulePrediction {
	loads := make(map[int]int)
	longest := 0
	for _, t := range schedule {
		loads[t.MachineID] += t.Duration
		longest = max(longest, t.Duration)
	}

	confidence := 100 - confidencePerMachine*len(loads) - confidencePerTask*len(schedule)
	confidence = min(100, max(0, confidence))

	risks := []string{}
	if len(loads) > riskMachineCount {
		risks = append(risks, RiskMachineCoordination)
	}
	if longest > riskTaskDuration {
		risks = append(risks, RiskLongTasks)
	}
	spread := 0.0
	for _, load := range loads {
		spread += math.Abs(float64(load) - float64(makespan)/2)
	}
	if spread > float64(makespan) {
		risks = append(risks, RiskUnevenWorkload)
	}

	return model.SchedulePrediction{
		CompletionTime: now.Add(time.Duration(makespan) * time.Minute),
		Confidence:     confidence,
		RiskFactors:    risks,
	}
}
