package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Maximum response size. Analyze responses echo every image back as a
// base64 data URI, so this is well above the service's 16 MB upload cap.
const maxResponseSize = 64 * 1024 * 1024

// Client provides methods to communicate with the analysis API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	requestID  func() string
}

// NewClient creates a client for DefaultEndpoint with no request timeout.
func NewClient() *Client {
	return NewClientWithConfig(DefaultEndpoint, 0)
}

// NewClientWithConfig creates a client with custom configuration.
// Parameters:
//   - endpoint: API base URL (e.g., "http://localhost:5001")
//   - timeout: per-request timeout; 0 waits as long as the context allows
func NewClientWithConfig(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		requestID: uuid.NewString,
	}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Status asks the service whether it is ready.
//
// Any JSON body is returned, whatever the HTTP status: the service reports
// "disconnected" with a 503 and "error" with a 500. A transport failure or a
// body that is not JSON is returned as an error.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+EndpointStatus, nil)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusResponse{}, classifyError(err, c.endpoint)
	}
	defer resp.Body.Close()

	body, err := readBody(resp.Body)
	if err != nil {
		return StatusResponse{}, err
	}
	if !gjson.ValidBytes(body) {
		return StatusResponse{}, fmt.Errorf("%w: status body is not JSON", ErrMalformedResponse)
	}

	return StatusResponse{
		Status:     stringField(body, "status"),
		Model:      stringField(body, "model"),
		BaseURL:    stringField(body, "base_url"),
		Error:      stringField(body, "error"),
		StatusCode: resp.StatusCode,
	}, nil
}

// Analyze uploads the files with the prompt and model and returns the
// service's answer.
//
// Returns ErrNoFiles or ErrEmptyPrompt for unusable input without making
// a request. A non-2xx response is returned as *APIError, whose message is
// the response's "error" field or DefaultErrorMessage. A 2xx body missing
// result, model or images yields ErrMalformedResponse.
func (c *Client) Analyze(ctx context.Context, in AnalyzeRequest) (AnalyzeResult, error) {
	if len(in.Files) == 0 {
		return AnalyzeResult{}, ErrNoFiles
	}
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return AnalyzeResult{}, ErrEmptyPrompt
	}

	body, contentType, err := encodeForm(in.Files, prompt, in.Model)
	if err != nil {
		return AnalyzeResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+EndpointAnalyze, body)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := c.requestID()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AnalyzeResult{}, classifyError(err, c.endpoint)
	}
	defer resp.Body.Close()

	respBody, err := readBody(resp.Body)
	if err != nil {
		return AnalyzeResult{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return AnalyzeResult{}, newAPIError(resp.StatusCode, respBody, requestID)
	}

	var wire analyzeResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return AnalyzeResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	result, err := wire.toResult()
	if err != nil {
		return AnalyzeResult{}, err
	}
	result.RequestID = requestID
	return result, nil
}

// Models lists the vision models the service can use.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+EndpointModels, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(err, c.endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := readBody(resp.Body)
	if err != nil {
		return nil, err
	}

	var models ModelsResponse
	if err := json.Unmarshal(body, &models); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	names := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		if m = strings.TrimSpace(m); m != "" {
			names = append(names, m)
		}
	}
	return names, nil
}

// encodeForm builds the multipart body: one "images" part per file, then
// the prompt and model fields.
func encodeForm(files []File, prompt, model string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldImages, quoteEscaper.Replace(f.Name)))
		h.Set("Content-Type", contentTypeFor(f.Name))

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image %q: %w", f.Name, err)
		}
	}

	if err := w.WriteField(FieldPrompt, prompt); err != nil {
		return nil, "", fmt.Errorf("failed to write prompt: %w", err)
	}
	if err := w.WriteField(FieldModel, model); err != nil {
		return nil, "", fmt.Errorf("failed to write model: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: response too large (>%d bytes)", ErrMalformedResponse, maxResponseSize)
	}
	return body, nil
}

// newAPIError extracts error and details from a failed response. Bodies
// that are not JSON (proxy error pages) get the default message.
func newAPIError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Message:    DefaultErrorMessage,
		RequestID:  requestID,
	}
	if !gjson.ValidBytes(body) {
		return apiErr
	}
	if msg := stringField(body, "error"); msg != "" {
		apiErr.Message = msg
	}
	apiErr.Details = stringField(body, "details")
	return apiErr
}

// stringField returns a top-level string field, or "" when absent or not a string.
func stringField(body []byte, path string) string {
	v := gjson.GetBytes(body, path)
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}
