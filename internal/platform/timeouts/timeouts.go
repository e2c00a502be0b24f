// Package timeouts defines shared timeout constants used across the site.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// TelemetryShutdown bounds the final span flush on process exit.
const TelemetryShutdown = 5 * time.Second

// MaxUploadBytes caps one multipart image upload.
const MaxUploadBytes = 10 << 20
