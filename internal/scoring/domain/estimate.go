package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultEstimateHours is assumed when a task carries no parseable
	// time estimate.
	DefaultEstimateHours = 2.0

	// HoursPerWorkday converts day estimates into hours.
	HoursPerWorkday = 8.0
)

var estimatePattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*(h|d|m)`)

// ParseEstimatedTime converts a free-form estimate ("4h", "2d", "90m") into
// hours. Day units convert at 8 hours per day, minute units divide by 60.
// Unrecognized or empty input yields the 2 hour default. Never fails.
func ParseEstimatedTime(text string) float64 {
	m := estimatePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultEstimateHours
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return DefaultEstimateHours
	}

	switch strings.ToLower(m[2]) {
	case "d":
		return value * HoursPerWorkday
	case "m":
		return value / 60
	default:
		return value
	}
}

// AnalysisDifficulty extracts the difficulty label from an AI analysis of
// the form "Label - details". Returns "" when the text carries no label.
func AnalysisDifficulty(analysis string) string {
	label, _, found := strings.Cut(analysis, " - ")
	if !found {
		return ""
	}
	return strings.TrimSpace(label)
}

// UrgencyScore computes the urgency component in [0,100] from the due date
// and the estimated effort. The estimate contributes a completion buffer of
// max(1, hours/8) days; a task is maximally urgent once its effective slack
// is gone, and ramps linearly down to the 14-day floor. The continuous ramp
// avoids score collisions at bucket boundaries.
func UrgencyScore(dueDate *time.Time, estimatedHours float64, now time.Time) int {
	if dueDate == nil {
		return 20
	}

	daysUntilDue := dueDate.Sub(now).Hours() / 24
	buffer := math.Max(1, estimatedHours/HoursPerWorkday)
	effectiveDaysLeft := daysUntilDue - buffer

	switch {
	case effectiveDaysLeft <= 0:
		return 100
	case effectiveDaysLeft >= 14:
		return 15
	default:
		t := effectiveDaysLeft / 14
		return int(math.Round(15 + (1-t)*85))
	}
}
