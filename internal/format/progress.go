package format

import (
	"fmt"
	"strings"
	"time"
)

// maxETA caps estimates made from very early progress.
const maxETA = 24 * time.Hour

// ProgressState tracks the completed fraction of several concurrent runs.
type ProgressState struct {
	progresses     []float64
	numCalculators int
}

// NewProgressState tracks numCalculators runs.
func NewProgressState(numCalculators int) *ProgressState {
	return &ProgressState{
		progresses:     make([]float64, max(numCalculators, 0)),
		numCalculators: numCalculators,
	}
}

// Update records value for run index, clamped to [0, 1]. Unknown indices
// are ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = min(max(value, 0), 1)
	}
}

// CalculateAverage returns the mean completed fraction.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numCalculators <= 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numCalculators)
}

// ProgressWithETA adds a smoothed completion rate to ProgressState.
type ProgressWithETA struct {
	*ProgressState
	numCalculators int
	startTime      time.Time
	progressRate   float64 // fraction per second
}

// NewProgressWithETA starts the clock for numCalculators runs.
func NewProgressWithETA(numCalculators int) *ProgressWithETA {
	return &ProgressWithETA{
		ProgressState:  NewProgressState(numCalculators),
		numCalculators: numCalculators,
		startTime:      time.Now(),
	}
}

// UpdateWithETA records an update and returns the new average and estimate.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)
	avg := p.CalculateAverage()
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 && avg > 0 {
		rate := avg / elapsed
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = 0.3*rate + 0.7*p.progressRate
		}
	}
	return avg, p.GetETA()
}

// GetETA returns the remaining time at the current rate, or 0 when unknown.
func (p *ProgressWithETA) GetETA() time.Duration {
	if p.progressRate <= 0 {
		return 0
	}
	remaining := 1 - p.CalculateAverage()
	if remaining <= 0 {
		return 0
	}
	secs := remaining / p.progressRate
	if secs > maxETA.Seconds() {
		return maxETA
	}
	return time.Duration(secs * float64(time.Second))
}

// FormatETA renders an estimate compactly, e.g. "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h, m := int(eta.Hours()), int(eta.Minutes())%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// ProgressBar draws a bar of length cells filled to progress.
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.0% ETA: 1m5s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), 100*min(max(progress, 0), 1), FormatETA(eta))
}
