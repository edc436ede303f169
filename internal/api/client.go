// Package api is the typed client for the EduRAG REST API. The server owns
// all state; this client only submits requests and decodes responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/edurag/tutorcli/internal/model"
)

// Client calls the EduRAG REST endpoints.
type Client struct {
	baseURL   string
	csrfToken string
	http      *http.Client
}

// New constructs a Client. baseURL must not end with a slash.
func New(baseURL, csrfToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		csrfToken: csrfToken,
		http:      &http.Client{Timeout: timeout},
	}
}

// UploadRequest carries the fields of the upload form.
type UploadRequest struct {
	FilePath  string
	Title     string
	SubjectID string
	GradeID   string
}

// UploadMaterial submits a new material as multipart form data and returns
// the server's record, which starts in the pending state.
func (c *Client) UploadMaterial(ctx context.Context, req UploadRequest) (*model.Material, error) {
	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	fields := map[string]string{
		"title":      req.Title,
		"subject_id": req.SubjectID,
		"grade_id":   req.GradeID,
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/upload-content/", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var material model.Material
	if err := c.do(httpReq, &material); err != nil {
		return nil, err
	}
	return &material, nil
}

// Materials lists all uploaded materials. The endpoint returns either a bare
// array or a paginated {"results": [...]} envelope; both are accepted.
func (c *Client) Materials(ctx context.Context) ([]model.Material, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/textbooks/", nil)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	return decodeMaterialList(raw)
}

func decodeMaterialList(raw json.RawMessage) ([]model.Material, error) {
	var list []model.Material
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var page struct {
		Results []model.Material `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode materials: %w", err)
	}
	return page.Results, nil
}

// Material fetches a single material by id. Used by the status tracker.
func (c *Client) Material(ctx context.Context, id string) (*model.Material, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/textbooks/"+url.PathEscape(id)+"/", nil)
	if err != nil {
		return nil, err
	}
	var material model.Material
	if err := c.do(req, &material); err != nil {
		return nil, err
	}
	return &material, nil
}

// DeleteMaterial removes a material. Irreversible.
func (c *Client) DeleteMaterial(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/textbooks/"+url.PathEscape(id)+"/", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// AskRequest carries one question to the tutor.
type AskRequest struct {
	Question   string `json:"question"`
	Type       string `json:"type"`
	Persona    string `json:"persona"`
	TextbookID string `json:"textbook_id"`
}

// Ask submits a question and returns the generated answer with citations.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*model.Answer, error) {
	if req.Type == "" {
		req.Type = "rag"
	}
	httpReq, err := c.newJSONRequest(ctx, http.MethodPost, "/api/ask/", req)
	if err != nil {
		return nil, err
	}
	var answer model.Answer
	if err := c.do(httpReq, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// FeedbackRequest rates a prior answer identified by its query log id.
type FeedbackRequest struct {
	QueryLogID   string `json:"query_log_id"`
	Rating       int    `json:"rating"`
	FeedbackText string `json:"feedback_text,omitempty"`
}

// SubmitFeedback records a star rating and optional comment.
func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) error {
	httpReq, err := c.newJSONRequest(ctx, http.MethodPost, "/api/feedback/", req)
	if err != nil {
		return err
	}
	return c.do(httpReq, nil)
}

// History fetches past exchanges. dateFilter is one of all/today/week/month.
func (c *Client) History(ctx context.Context, dateFilter string) ([]model.HistoryEntry, error) {
	path := "/api/feedback/"
	if dateFilter != "" {
		path += "?date_filter=" + url.QueryEscape(dateFilter)
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var page struct {
		Results []model.HistoryEntry `json:"results"`
	}
	if err := c.do(req, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// SessionStats fetches aggregate metrics for the current session.
func (c *Client) SessionStats(ctx context.Context) (*model.SessionStats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/session-stats/", nil)
	if err != nil {
		return nil, err
	}
	var stats model.SessionStats
	if err := c.do(req, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CreateSubject adds a taxonomy subject.
func (c *Client) CreateSubject(ctx context.Context, name string) (*model.Subject, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/subjects/", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	var subject model.Subject
	if err := c.do(req, &subject); err != nil {
		return nil, err
	}
	return &subject, nil
}

// CreateGrade adds a taxonomy grade level.
func (c *Client) CreateGrade(ctx context.Context, level int) (*model.Grade, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/grades/", map[string]int{"level": level})
	if err != nil {
		return nil, err
	}
	var grade model.Grade
	if err := c.do(req, &grade); err != nil {
		return nil, err
	}
	return &grade, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if method != http.MethodGet && c.csrfToken != "" {
		req.Header.Set("X-CSRFToken", c.csrfToken)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload interface{}) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do executes the request and decodes the JSON body into out (which may be
// nil). Non-2xx responses become *Error carrying the server's "error"
// message verbatim when present.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &Error{Status: status, Message: envelope.Error}
	}
	return &Error{Status: status}
}
