package config

import "time"

// Application-wide constants organized by domain

// UI and Display Constants
const (
	// Pagination
	SessionsPerPage = 7
	PullsPerPage    = 10
	DefaultPageSize = 10
	MaxPageSize     = 25

	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// Discord UI Colors
	EmbedDefaultColor = 0x2B2D31
)

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	SearchTimeout       = 10 * time.Second
	NetworkDialTimeout  = 5 * time.Second

	// Cache settings
	BannerCacheSize = 256

	// Retries
	MaxRetries = 3
)

// Search Constants
const (
	MaxSearchResults = 25
)
