// Package timeouts defines shared timeout constants used across the API.
package timeouts

import "time"

// Request bounds database work done on behalf of a single HTTP request.
const Request = 5 * time.Second

// Gateway caps a single call to the payment gateway.
const Gateway = 15 * time.Second

// Publish caps a best-effort broker publish.
const Publish = 3 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 10 * time.Second
