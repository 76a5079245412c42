package server

import (
	"github.com/bayleafwalker/bindery-graph/internal/graph"
	"github.com/bayleafwalker/bindery-graph/internal/introspect"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// Reasons lists why candidates were filtered, when known.
	Reasons []string `json:"reasons,omitempty"`
}

type ResolveRequest struct {
	Targets []string `json:"targets" binding:"required,min=1"`
	// Kind is build or run. Empty means build.
	Kind string `json:"kind"`
}

type TargetResult struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	File    string   `json:"file,omitempty"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

type ResolveResponse struct {
	Targets []TargetResult `json:"targets"`
	Failed  bool           `json:"failed"`
}

type QueryResponse struct {
	Root       string        `json:"root"`
	Visits     []graph.Visit `json:"visits"`
	Truncated  bool          `json:"truncated,omitempty"`
	DurationMs int64         `json:"durationMs"`
}

type FilesResponse struct {
	Files []string `json:"files"`
}

type MetadataResponse struct {
	Target string          `json:"target,omitempty"`
	Data   introspect.Data `json:"data"`
}

type RequestView struct {
	Target   string `json:"target"`
	Kind     string `json:"kind"`
	Depender string `json:"depender,omitempty"`
}

type WhyResponse struct {
	File     string        `json:"file"`
	Requests []RequestView `json:"requests"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Files  int    `json:"files"`
}
