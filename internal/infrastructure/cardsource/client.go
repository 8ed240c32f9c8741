// Package cardsource implements the card.Source port against the task
// board's REST API.
package cardsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/deatl/backend/internal/domain/card"
	"github.com/deatl/backend/internal/infrastructure/config"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024

// Client talks to the board's REST API. Credentials are sent as query
// parameters on every request, the way the board's API expects them.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
}

var _ card.Source = (*Client)(nil)

// NewClient creates a board API client from configuration.
func NewClient(cfg config.CardSourceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type attachmentPayload struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	MimeType string    `json:"mimeType"`
	Bytes    int64     `json:"bytes"`
	Date     time.Time `json:"date"`
	URL      string    `json:"url"`
}

type actionPayload struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Date time.Time `json:"date"`
	Data struct {
		Text       string `json:"text"`
		ListBefore *struct {
			Name string `json:"name"`
		} `json:"listBefore"`
		ListAfter *struct {
			Name string `json:"name"`
		} `json:"listAfter"`
	} `json:"data"`
	MemberCreator struct {
		FullName string `json:"fullName"`
	} `json:"memberCreator"`
}

// Attachments implements card.Source
func (c *Client) Attachments(ctx context.Context, cardID string) ([]card.Attachment, error) {
	body, err := c.get(ctx, fmt.Sprintf("/cards/%s/attachments", cardID), nil)
	if err != nil {
		return nil, card.NewFetchError("attachments", cardID, err)
	}

	var payload []attachmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, card.NewFetchError("attachments", cardID, fmt.Errorf("decode response: %w", err))
	}

	attachments := make([]card.Attachment, 0, len(payload))
	for _, p := range payload {
		attachments = append(attachments, card.Attachment{
			ID:       p.ID,
			FileName: p.Name,
			MimeType: p.MimeType,
			Bytes:    p.Bytes,
			Date:     p.Date,
			URL:      p.URL,
		})
	}
	return attachments, nil
}

// Actions implements card.Source
func (c *Client) Actions(ctx context.Context, cardID string) ([]card.Action, error) {
	body, err := c.get(ctx, fmt.Sprintf("/cards/%s/actions", cardID), url.Values{
		"filter": []string{"commentCard,updateCard"},
		"limit":  []string{"1000"},
	})
	if err != nil {
		return nil, card.NewFetchError("actions", cardID, err)
	}

	var payload []actionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, card.NewFetchError("actions", cardID, fmt.Errorf("decode response: %w", err))
	}

	actions := make([]card.Action, 0, len(payload))
	for _, p := range payload {
		actions = append(actions, decodeAction(p))
	}
	return actions, nil
}

// decodeAction maps a raw activity record onto a tagged Action. Everything
// that is not a comment or a list move stays Unrecognized.
func decodeAction(p actionPayload) card.Action {
	a := card.Action{
		ID:     p.ID,
		Kind:   card.ActionUnrecognized,
		Date:   p.Date,
		Author: p.MemberCreator.FullName,
	}
	switch {
	case p.Type == "commentCard":
		a.Kind = card.ActionComment
		a.Text = p.Data.Text
	case p.Type == "updateCard" && p.Data.ListBefore != nil && p.Data.ListAfter != nil:
		a.Kind = card.ActionMove
		a.ListBefore = p.Data.ListBefore.Name
		a.ListAfter = p.Data.ListAfter.Name
	}
	return a
}

// UploadAttachment implements card.Source
func (c *Client) UploadAttachment(ctx context.Context, cardID, fileName, mimeType string, data []byte) (*card.Attachment, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("cardsource: failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("cardsource: failed to build multipart body: %w", err)
	}
	if mimeType != "" {
		if err := writer.WriteField("mimeType", mimeType); err != nil {
			return nil, fmt.Errorf("cardsource: failed to build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("cardsource: failed to build multipart body: %w", err)
	}

	body, err := c.post(ctx, fmt.Sprintf("/cards/%s/attachments", cardID), writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, card.NewFetchError("upload", cardID, err)
	}

	var payload attachmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, card.NewFetchError("upload", cardID, fmt.Errorf("decode response: %w", err))
	}
	return &card.Attachment{
		ID:       payload.ID,
		FileName: payload.Name,
		MimeType: payload.MimeType,
		Bytes:    payload.Bytes,
		Date:     payload.Date,
		URL:      payload.URL,
	}, nil
}

// AttachURL implements card.Source
func (c *Client) AttachURL(ctx context.Context, cardID, name, fileURL string) (*card.Attachment, error) {
	form := url.Values{"name": []string{name}, "url": []string{fileURL}}
	body, err := c.post(ctx, fmt.Sprintf("/cards/%s/attachments", cardID),
		"application/x-www-form-urlencoded", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, card.NewFetchError("attach_url", cardID, err)
	}

	var payload attachmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, card.NewFetchError("attach_url", cardID, fmt.Errorf("decode response: %w", err))
	}
	return &card.Attachment{
		ID:       payload.ID,
		FileName: payload.Name,
		MimeType: payload.MimeType,
		Date:     payload.Date,
		URL:      payload.URL,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, params), nil)
	if err != nil {
		return nil, fmt.Errorf("cardsource: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path, nil), body)
	if err != nil {
		return nil, fmt.Errorf("cardsource: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", card.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cardsource: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, card.ErrCardNotFound
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return nil, card.ErrAttachmentTooLarge
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", card.ErrSourceUnavailable, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) buildURL(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.apiKey)
	params.Set("token", c.token)
	return c.baseURL + path + "?" + params.Encode()
}
