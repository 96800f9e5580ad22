// Package convert talks to the remote document-conversion service that turns
// DOCX fragments and HTML snippets into editor-native paste payloads.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client is an HTTP client for the conversion service. The service exposes
// two endpoints relative to its base URL: Import (DOCX upload) and
// SystemClipboard (HTML snippet).
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a conversion client. baseURL is used as a prefix, matching the
// service's URL scheme, so it normally ends with a slash.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Import converts a DOCX blob into an editor-native payload.
func (c *Client) Import(ctx context.Context, docx []byte) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", "clause.docx")
	if err != nil {
		return nil, fmt.Errorf("build import form: %w", err)
	}
	if _, err := part.Write(docx); err != nil {
		return nil, fmt.Errorf("build import form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build import form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"Import", &body)
	if err != nil {
		return nil, fmt.Errorf("build import request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, "import")
}

// SystemClipboard converts an HTML snippet into an editor-native payload.
func (c *Client) SystemClipboard(ctx context.Context, html string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]string{
		"content": html,
		"type":    ".html",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal clipboard request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"SystemClipboard", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build clipboard request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "clipboard")
}

func (c *Client) do(req *http.Request, op string) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s request: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s response is not valid JSON", op)
	}
	return json.RawMessage(data), nil
}

// FormattedHTML builds the paragraph markup inserted as a clause title.
func FormattedHTML(text string, underline, uppercase bool) string {
	formatted := text
	if uppercase {
		formatted = strings.ToUpper(formatted)
	}
	if underline {
		formatted = "<u>" + formatted + "</u>"
	}
	return "<p>" + formatted + "</p>"
}
