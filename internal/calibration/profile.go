package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// CurrentProfileVersion is bumped whenever the profile fields change
	// meaning.
	CurrentProfileVersion = 1
	// DefaultProfileFileName is stored in the user's home directory.
	DefaultProfileFileName = ".mpolymul_calibration.json"
	// ProfileMaxAge is how long a profile is trusted.
	ProfileMaxAge = 30 * 24 * time.Hour
)

// CalibrationProfile stores the tuning found on one machine.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	NumCPU    int    `json:"num_cpu"`
	GOARCH    string `json:"goarch"`
	GOOS      string `json:"goos"`
	GoVersion string `json:"go_version"`
	WordSize  int    `json:"word_size"`

	OptimalThreads           int `json:"optimal_threads"`
	OptimalParallelThreshold int `json:"optimal_parallel_threshold"`

	// CalibrationTerms is the operand length of the workload.
	CalibrationTerms int           `json:"calibration_terms"`
	CalibrationTime  string        `json:"calibration_time"`
	Measurements     []Measurement `json:"measurements,omitempty"`
}

// NewProfile returns a profile stamped with the current machine.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		CalibratedAt:   time.Now(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
	}
}

// GetDefaultProfilePath returns ~/.mpolymul_calibration.json, or the file
// name alone when the home directory is unknown.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// SaveProfile writes p as indented JSON, creating missing directories.
func (p *CalibrationProfile) SaveProfile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create profile directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", path, err)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path (the default path when
// empty). The boolean reports whether a usable profile was found; otherwise
// a fresh, empty profile is returned.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() || p.IsStale(ProfileMaxAge) {
		return NewProfile(), false
	}
	return p, true
}

// IsValid reports whether p was made by this version on matching hardware.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	cur := NewProfile()
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == cur.NumCPU &&
		p.GOARCH == cur.GOARCH &&
		p.WordSize == cur.WordSize &&
		p.OptimalThreads > 0
}

// IsStale reports whether p is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	return p == nil || time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	return fmt.Sprintf("calibration of %s (%d CPUs, %s/%s): threads=%d, parallel threshold=%d pairs",
		p.CalibratedAt.Format(time.DateOnly), p.NumCPU, p.GOOS, p.GOARCH,
		p.OptimalThreads, p.OptimalParallelThreshold)
}
