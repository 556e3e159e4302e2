package utils

import (
	"time"
)

// Pagination constants
const (
	// DefaultPageSize is the assigned-CAG page size used when none is requested
	DefaultPageSize = 10

	// MaxPageSize caps the page size accepted at the HTTP boundary
	MaxPageSize = 100
)

// Workspace session constants
const (
	// WorkspaceTTL is how long an idle workspace session survives before the sweeper drops it
	WorkspaceTTL = 30 * time.Minute

	// WorkspaceSweepInterval is how often expired workspace sessions are collected
	WorkspaceSweepInterval = 5 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
