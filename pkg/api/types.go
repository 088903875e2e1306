package api

import "net/http"

// StatusResponse is the body of the liveness endpoint
type StatusResponse struct {
	Status string `json:"status"`
}

// Mount is an extra GET endpoint served next to the webhook routes, e.g. /metrics
type Mount struct {
	Path    string
	Handler http.Handler
}
