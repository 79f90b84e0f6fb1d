// Package analyzer provides a client for the drawing analysis API.
// The API accepts images and a prompt, runs a vision model behind the
// scenes, and answers with plain text.
package analyzer

import (
	"fmt"
	"strings"
)

// Default configuration constants
const (
	DefaultEndpoint = "http://localhost:5001"
	DefaultModel    = "llava"
)

// API endpoints
const (
	EndpointStatus  = "/api/status"
	EndpointAnalyze = "/api/analyze"
	EndpointModels  = "/api/models"
)

// Multipart form fields of an analyze request
const (
	FieldImages = "images"
	FieldPrompt = "prompt"
	FieldModel  = "model"
)

// StatusReady is the only status value that means the service can analyze.
const StatusReady = "ready"

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// DefaultErrorMessage is used when a failed analysis carries no error field.
const DefaultErrorMessage = "Analysis failed"

// DefaultModels is the selector list used until the service reports its own.
var DefaultModels = []string{"llava", "bakllava", "moondream"}

// File is one staged upload.
type File struct {
	Name string
	Data []byte
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status  string `json:"status"`
	Model   string `json:"model,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Error   string `json:"error,omitempty"`

	// StatusCode is the HTTP status the body arrived with.
	StatusCode int `json:"-"`
}

// Ready reports whether the service declared itself ready.
func (s StatusResponse) Ready() bool {
	return s.Status == StatusReady
}

// AnalyzeRequest is the input to Analyze.
type AnalyzeRequest struct {
	Files  []File
	Prompt string
	Model  string
}

// ImagePreview is an uploaded image echoed back for display.
// Data is an inline data URI (data:image/png;base64,...).
type ImagePreview struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// AnalyzeResult is a validated analyze response.
type AnalyzeResult struct {
	Result string
	Images []ImagePreview
	Model  string
	Prompt string

	// RequestID is the X-Request-ID sent with the request.
	RequestID string
}

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// analyzeResponse mirrors the wire format. Pointers distinguish missing
// fields from empty ones.
type analyzeResponse struct {
	Success *bool           `json:"success,omitempty"`
	Result  *string         `json:"result"`
	Images  *[]ImagePreview `json:"images"`
	Model   *string         `json:"model"`
	Prompt  string          `json:"prompt,omitempty"`
}

// toResult validates the response shape.
func (r analyzeResponse) toResult() (AnalyzeResult, error) {
	var missing []string
	if r.Result == nil {
		missing = append(missing, "result")
	}
	if r.Model == nil {
		missing = append(missing, "model")
	}
	if r.Images == nil {
		missing = append(missing, "images")
	}
	if len(missing) > 0 {
		return AnalyzeResult{}, fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}
	if r.Success != nil && !*r.Success {
		return AnalyzeResult{}, fmt.Errorf("%w: success=false on a 2xx response", ErrMalformedResponse)
	}

	images := *r.Images
	for i, img := range images {
		if img.Data == "" {
			return AnalyzeResult{}, fmt.Errorf("%w: image %d (%q) has no data", ErrMalformedResponse, i, img.Name)
		}
	}

	return AnalyzeResult{
		Result: *r.Result,
		Images: images,
		Model:  *r.Model,
		Prompt: r.Prompt,
	}, nil
}
