package httpserver

import "time"

// ShutdownTimeout controls how long to wait for graceful shutdowns, including
// draining the background view recorder.
var ShutdownTimeout = 15 * time.Second

// UploadTimeout bounds reading one request body, which may be a video upload.
const UploadTimeout = 5 * time.Minute
