package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sentiboard/internal/history"
)

// Client talks to the analysis backend and normalizes every response into
// either a typed value or exactly one of the typed errors in errors.go.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewClient creates a new analysis client
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
		logger:  logger,
	}
}

// BaseURL returns the backend origin this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// rawResponse is a successful (2xx) response with its body fully read.
type rawResponse struct {
	status      int
	contentType string
	body        []byte
}

// AnalyzeText analyzes a text payload.
func (c *Client) AnalyzeText(ctx context.Context, text, model string) (*Result, error) {
	body, err := json.Marshal(analyzeRequest{Text: text, Model: modelOrDefault(model)})
	if err != nil {
		return nil, &NetworkError{Message: "failed to marshal request: " + err.Error(), Err: err}
	}

	raw, err := c.send(ctx, http.MethodPost, "/analyze", nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	var result Result
	if err := decodeJSON(raw.body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeFile uploads a text file for analysis.
func (c *Client) AnalyzeFile(ctx context.Context, filename string, r io.Reader, model string) (*Result, error) {
	body, contentType, err := multipartFile(filename, r)
	if err != nil {
		return nil, &NetworkError{Message: err.Error(), Err: err}
	}

	query := url.Values{"model": {modelOrDefault(model)}}
	raw, err := c.send(ctx, http.MethodPost, "/analyze_file", query, body, contentType)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := decodeJSON(raw.body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeCSV uploads a CSV file for batch analysis. The backend answers either
// with an inline JSON preview or with the finished CSV.
func (c *Client) AnalyzeCSV(ctx context.Context, filename string, data []byte, model string) (*Batch, error) {
	body, contentType, err := multipartFile(filename, bytes.NewReader(data))
	if err != nil {
		return nil, &NetworkError{Message: err.Error(), Err: err}
	}

	query := url.Values{"model": {modelOrDefault(model)}}
	raw, err := c.send(ctx, http.MethodPost, "/analyze_csv", query, body, contentType)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(raw.contentType, "application/json"):
		var preview CSVPreview
		if err := decodeJSON(raw.body, &preview); err != nil {
			return nil, err
		}
		return &Batch{Preview: &preview}, nil
	case strings.Contains(raw.contentType, "text/csv"):
		if len(raw.body) == 0 {
			return nil, &EmptyResponseError{}
		}
		return &Batch{CSV: raw.body}, nil
	}
	return nil, &UnexpectedContentTypeError{ContentType: raw.contentType}
}

// DownloadCSV re-submits the same file asking for the full CSV result.
func (c *Client) DownloadCSV(ctx context.Context, filename string, data []byte, model string) ([]byte, error) {
	body, contentType, err := multipartFile(filename, bytes.NewReader(data))
	if err != nil {
		return nil, &NetworkError{Message: err.Error(), Err: err}
	}

	query := url.Values{"format": {"csv"}, "model": {modelOrDefault(model)}}
	raw, err := c.send(ctx, http.MethodPost, "/analyze_csv", query, body, contentType)
	if err != nil {
		return nil, err
	}
	if len(raw.body) == 0 {
		return nil, &EmptyResponseError{}
	}
	return raw.body, nil
}

// Chat sends a message to the assistant.
func (c *Client) Chat(ctx context.Context, message, tone string) (*ChatReply, error) {
	body, err := json.Marshal(chatRequest{Message: message, Tone: tone})
	if err != nil {
		return nil, &NetworkError{Message: "failed to marshal request: " + err.Error(), Err: err}
	}

	raw, err := c.send(ctx, http.MethodPost, "/chat", nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	var reply ChatReply
	if err := decodeJSON(raw.body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// History fetches the most recent analysis records.
func (c *Client) History(ctx context.Context, limit int) ([]history.Record, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	raw, err := c.send(ctx, http.MethodGet, "/history", query, nil, "")
	if err != nil {
		return nil, err
	}

	var resp HistoryResponse
	if err := decodeJSON(raw.body, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []history.Record{}, nil
	}
	return resp.Items, nil
}

// SaveSettings posts preference fields either as a form or as JSON. Any 2xx
// counts as success; no body is required.
func (c *Client) SaveSettings(ctx context.Context, fields map[string]string, asJSON bool) error {
	var (
		body        io.Reader
		contentType string
	)
	if asJSON {
		data, err := json.Marshal(fields)
		if err != nil {
			return &NetworkError{Message: "failed to marshal request: " + err.Error(), Err: err}
		}
		body, contentType = bytes.NewReader(data), "application/json"
	} else {
		buf, ct, err := multipartFields(fields)
		if err != nil {
			return &NetworkError{Message: err.Error(), Err: err}
		}
		body, contentType = buf, ct
	}

	_, err := c.send(ctx, http.MethodPost, "/settings", nil, body, contentType)
	return err
}

// ExportPDF asks the backend for a PDF report of text.
func (c *Client) ExportPDF(ctx context.Context, text, model string) ([]byte, error) {
	body, err := json.Marshal(analyzeRequest{Text: text, Model: modelOrDefault(model)})
	if err != nil {
		return nil, &NetworkError{Message: "failed to marshal request: " + err.Error(), Err: err}
	}

	raw, err := c.send(ctx, http.MethodPost, "/export_pdf", nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	if len(raw.body) == 0 {
		return nil, &EmptyResponseError{}
	}
	return raw.body, nil
}

// send executes a request and applies the shared normalization rules:
// transport failure is a NetworkError, non-2xx is an HTTPError carrying
// whatever body could be read.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*rawResponse, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &NetworkError{Message: fmt.Sprintf("failed to create request: %v", err), Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, &NetworkError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// body is best-effort here; a read failure just leaves it empty
		text := ""
		if readErr == nil {
			text = string(data)
		}
		return nil, &HTTPError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       text,
		}
	}
	if readErr != nil {
		return nil, &NetworkError{Message: fmt.Sprintf("failed to read response: %v", readErr), Err: readErr}
	}

	return &rawResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// decodeJSON distinguishes an empty body from a malformed one.
func decodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &EmptyResponseError{}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &MalformedResponseError{Body: string(body), Err: err}
	}
	return nil
}

func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func modelOrDefault(model string) string {
	if strings.TrimSpace(model) == "" {
		return DefaultModel
	}
	return model
}

func multipartFile(filename string, r io.Reader) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func multipartFields(fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
