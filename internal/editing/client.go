package editing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to the document backend's HTTP surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. baseURL is the server root, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores a document blob and returns the generated filename.
func (c *Client) Upload(ctx context.Context, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "document.docx")
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload request: unexpected status %d", resp.StatusCode)
	}

	var parsed struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if !parsed.Success || parsed.Filename == "" {
		return "", fmt.Errorf("upload rejected by server")
	}
	return parsed.Filename, nil
}

// Latest fetches the most recently stored document, returning its bytes and
// filename. The filename comes from the Content-Disposition header.
func (c *Client) Latest(ctx context.Context) ([]byte, string, error) {
	return c.fetch(ctx, c.LatestURL())
}

// Document fetches a named document.
func (c *Client) Document(ctx context.Context, filename string) ([]byte, error) {
	data, _, err := c.fetch(ctx, c.baseURL+"/api/documents/"+filename)
	return data, err
}

// LatestURL returns the URL the editor opens the latest document from.
func (c *Client) LatestURL() string {
	return c.baseURL + "/api/documents/latest/document"
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build document request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("document request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("document not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("document request: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read document body: %w", err)
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return data, filename, nil
}
