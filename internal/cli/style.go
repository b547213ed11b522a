package cli

import (
	"github.com/fatih/color"
	"github.com/me/shopfloor/pkg/model"
)

var (
	bold      = color.New(color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	boldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
	boldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
)

// recommendationLabel returns the colored [type] tag for a recommendation.
func recommendationLabel(t model.RecommendationType) string {
	tag := "[" + string(t) + "]"
	switch t {
	case model.RecommendationCritical:
		return boldRed(tag)
	case model.RecommendationWarning:
		return yellow(tag)
	default:
		return green(tag)
	}
}
