package sysmon

import (
	"context"
	"testing"
)

func TestSampleReturnsValidRanges(t *testing.T) {
	s := Sample(context.Background())
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
	if s.LogicalCPUs < 1 {
		t.Errorf("LogicalCPUs = %d", s.LogicalCPUs)
	}
	if s.FreeMemory > s.TotalMemory {
		t.Errorf("free memory %d exceeds total %d", s.FreeMemory, s.TotalMemory)
	}
}

func TestSuggestedThreads(t *testing.T) {
	t.Parallel()
	tests := []struct {
		s    Stats
		want int
	}{
		{Stats{LogicalCPUs: 16, PhysicalCPUs: 8}, 8},
		{Stats{LogicalCPUs: 4}, 4},
		{Stats{LogicalCPUs: 4, PhysicalCPUs: 4}, 4},
		{Stats{}, 1},
	}
	for _, tt := range tests {
		if got := tt.s.SuggestedThreads(); got != tt.want {
			t.Errorf("%+v.SuggestedThreads() = %d, want %d", tt.s, got, tt.want)
		}
	}
}
