package mailapi

import (
	"bytes"
	"context"
	"crmmail/config"
	"crmmail/models"
	"crmmail/utils"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client talks to the third-party mail API and the CRM's metadata and
// contact endpoints. It is the only component that performs I/O for the
// inbox and compose features.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *utils.Logger
}

// NewClient creates a provider client from configuration.
func NewClient(cfg config.ProviderConfig, log *utils.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout()},
		log:     log,
	}
}

// ServerError is a non-success response carrying the provider's own
// human-readable message when one was present.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider returned %d", e.StatusCode)
}

// TransportError is a network-level failure: no response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do executes the request and decodes a JSON body into out. Non-2xx
// responses become ServerError; failures with no response become
// TransportError.
func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverErr := &ServerError{StatusCode: resp.StatusCode}
		var payload errorPayload
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Error != "" {
				serverErr.Message = payload.Error
			} else {
				serverErr.Message = payload.Message
			}
		}
		c.log.Warn("Provider request failed: %s %s -> %d", req.Method, req.URL.Path, resp.StatusCode)
		return serverErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding provider response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// ListMessages fetches the message list for a folder. For the sent folder a
// sending domain may narrow the result; limit bounds the page size.
func (c *Client) ListMessages(ctx context.Context, folder, domain string, limit int) ([]models.Email, error) {
	query := url.Values{}
	query.Set("folder", folder)
	if domain != "" {
		query.Set("domain", domain)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Emails []models.Email `json:"emails"`
	}
	if err := c.get(ctx, "/inbox", query, &resp); err != nil {
		return nil, err
	}
	return resp.Emails, nil
}

// GetMessage fetches one message with full bodies.
func (c *Client) GetMessage(ctx context.Context, id, folder string) (*models.Email, error) {
	query := url.Values{}
	if folder != "" {
		query.Set("folder", folder)
	}

	var resp struct {
		Email *models.Email `json:"email"`
	}
	if err := c.get(ctx, "/email/"+url.PathEscape(id), query, &resp); err != nil {
		return nil, err
	}
	if resp.Email == nil {
		return nil, &ServerError{StatusCode: 404, Message: "email not found"}
	}
	return resp.Email, nil
}

// OutgoingMessage is the payload for Send. Cc and Bcc are included in the
// multipart form only when non-empty.
type OutgoingMessage struct {
	To          string
	Cc          string
	Bcc         string
	Subject     string
	Body        string
	Attachments []models.Attachment
}

// Send posts the message as multipart form data to the send endpoint.
func (c *Client) Send(ctx context.Context, msg OutgoingMessage) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"to":      msg.To,
		"subject": msg.Subject,
		"message": msg.Body,
	}
	if msg.Cc != "" {
		fields["cc"] = msg.Cc
	}
	if msg.Bcc != "" {
		fields["bcc"] = msg.Bcc
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return err
		}
	}

	for _, att := range msg.Attachments {
		part, err := w.CreateFormFile("attachments", att.Filename)
		if err != nil {
			return err
		}
		if _, err := part.Write(att.Content); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, nil)
}

// FetchMetadata bulk-fetches metadata for the given message ids. The ids
// are comma-joined, matching the endpoint's contract. Messages with no
// stored metadata are simply absent from the returned map.
func (c *Client) FetchMetadata(ctx context.Context, ids []string) (map[string]*models.EmailMetadata, error) {
	if len(ids) == 0 {
		return map[string]*models.EmailMetadata{}, nil
	}

	query := url.Values{}
	query.Set("emailIds", strings.Join(ids, ","))

	var resp struct {
		Metadata map[string]*models.EmailMetadata `json:"metadata"`
	}
	if err := c.get(ctx, "/metadata", query, &resp); err != nil {
		return nil, err
	}
	if resp.Metadata == nil {
		resp.Metadata = map[string]*models.EmailMetadata{}
	}
	return resp.Metadata, nil
}

// UpdateMetadata patches one message's metadata and returns the server's
// authoritative merged record.
func (c *Client) UpdateMetadata(ctx context.Context, id string, update models.MetadataUpdate) (*models.EmailMetadata, error) {
	payload := struct {
		EmailID string `json:"email_id"`
		models.MetadataUpdate
	}{EmailID: id, MetadataUpdate: update}

	var resp struct {
		Metadata *models.EmailMetadata `json:"metadata"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/metadata", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Metadata == nil {
		return nil, &ServerError{StatusCode: 500, Message: "metadata missing from response"}
	}
	return resp.Metadata, nil
}

// BulkUpdateMetadata applies one shared update to many messages and returns
// the number of records the server reports as updated.
func (c *Client) BulkUpdateMetadata(ctx context.Context, ids []string, update models.MetadataUpdate) (int, error) {
	payload := struct {
		EmailIDs []string              `json:"email_ids"`
		Updates  models.MetadataUpdate `json:"updates"`
	}{EmailIDs: ids, Updates: update}

	var resp struct {
		Updated int `json:"updated"`
	}
	if err := c.sendJSON(ctx, http.MethodPatch, "/metadata", payload, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

// SearchContacts queries the address book for autocomplete candidates.
func (c *Client) SearchContacts(ctx context.Context, q string, limit int) ([]models.Contact, error) {
	query := url.Values{}
	query.Set("q", q)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Contacts []models.Contact `json:"contacts"`
	}
	if err := c.get(ctx, "/contacts/search", query, &resp); err != nil {
		return nil, err
	}
	return resp.Contacts, nil
}

// GenerateDraft asks the AI endpoint to draft HTML body content from a
// free-text prompt.
func (c *Client) GenerateDraft(ctx context.Context, prompt string) (string, error) {
	payload := struct {
		Prompt string `json:"prompt"`
	}{Prompt: prompt}

	var resp struct {
		Content string `json:"content"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/ai/generate", payload, &resp); err != nil {
		return "", err
	}
	if resp.Content == "" {
		return "", &ServerError{StatusCode: 500, Message: "empty generation result"}
	}
	return resp.Content, nil
}
