package vizcheck

import (
	"time"

	"github.com/okian/biofitviz/internal/domain/geometry"
	"github.com/okian/biofitviz/internal/domain/model"
)

// Config holds configuration for a live check.
type Config struct {
	BaseURL    string        // Base URL of the service
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Where the fetched payload is saved; empty skips saving
	MaxTraces  int           // Upper bound on traces; zero disables the check
	MaxStates  int           // Upper bound on points per trace; zero disables the check
	Verbose    bool          // Enable verbose logging
}

// Snapshot is everything fetched from one running service.
type Snapshot struct {
	Payload  geometry.Result
	Hulls    []model.Hull
	Workouts []model.Description
}

// Finding is one failed check.
type Finding struct {
	Check  string
	Detail string
}

// Stats holds check statistics.
type Stats struct {
	Requests     int
	Traces       int
	Points       int
	Hulls        int
	Trajectories int
	Checks       int
	Failures     int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
