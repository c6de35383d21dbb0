package loadtest

import "time"

// Config holds configuration for a load run against a live server.
type Config struct {
	BaseURL      string        // Base URL of the service
	Participants int           // Number of participants to generate and enroll
	TeamSize     int           // Team size requested from the server
	Parallel     bool          // Ask the server for a parallel formation
	Workers      int           // Number of concurrent enrollment workers
	Seed         uint64        // Seed for the generated roster
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Enrolled   int
	Duplicates int
	Failed     int
	Teams      int
	Score      float64
	Mode       string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
