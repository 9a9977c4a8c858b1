package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	UploadTimeout      = 60 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Sub-stat scale bounds for individual values.
const (
	IVMin = 0
	IVMax = 15
)

// MaxUploadBytes caps multipart snapshot uploads. Real exports run a few MB.
const MaxUploadBytes = 64 << 20

// EnrichWorkers bounds parallel enrichment within one snapshot.
const EnrichWorkers = 8
