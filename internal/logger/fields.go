package logger

// Standard field keys for structured logging. Use these keys consistently
// across log statements so job and catalog activity can be filtered by
// project and scan.
const (
	KeyJobID      = "job_id"      // Runner identifier
	KeyJobType    = "job_type"    // download, upload, validate
	KeyStatus     = "status"      // Runner status
	KeyProjectID  = "project_id"  // Catalog project id
	KeyScanID     = "scan_id"     // Catalog scan id
	KeyPath       = "path"        // Full file or directory path
	KeySource     = "source"      // Source path for copy operations
	KeyDest       = "dest"        // Destination path for copy operations
	KeyFiles      = "files"       // File count
	KeySize       = "size"        // Size in bytes
	KeyProgress   = "progress"    // Current progress
	KeyDurationMs = "duration_ms" // Elapsed time in milliseconds
)
