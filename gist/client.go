// Package gist creates private gists through the GitHub REST API.
package gist

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"tracker-api/domain"
)

const (
	DefaultBaseURL = "https://api.github.com"
	serviceName    = "github gists"
	maxErrorBody   = 64 * 1024
)

// Client submits gists with a bearer token. A single attempt is made per call.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Logger  *log.Logger
}

// New creates a Client. An empty baseURL selects the public GitHub API.
func New(baseURL, token string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{},
		Logger:  logger,
	}
}

type gistFile struct {
	Content string `json:"content"`
}

type createRequest struct {
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

type createResponse struct {
	ID      string `json:"id"`
	HTMLURL string `json:"html_url"`
}

// CreateGist implements domain.GistPublisher.
func (c *Client) CreateGist(ctx context.Context, g domain.Gist) (domain.GistResult, error) {
	if c.Token == "" {
		return domain.GistResult{}, &domain.ConfigError{Msg: "GitHub token is missing in environment variables"}
	}
	body, err := sonic.Marshal(createRequest{
		Description: g.Description,
		Public:      g.Public,
		Files:       map[string]gistFile{g.Filename: {Content: g.Content}},
	})
	if err != nil {
		return domain.GistResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/gists", bytes.NewReader(body))
	if err != nil {
		return domain.GistResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.WithError(err).Warn("gist request failed")
		return domain.GistResult{}, &domain.ExternalServiceError{Service: serviceName, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return domain.GistResult{}, &domain.ExternalServiceError{Service: serviceName, StatusCode: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.WithFields(log.Fields{"status": resp.StatusCode}).Warn("gist service rejected request")
		e := &domain.ExternalServiceError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
		if sonic.Valid(raw) {
			e.Payload = raw
		}
		return domain.GistResult{}, e
	}

	var out createResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return domain.GistResult{}, &domain.ExternalServiceError{Service: serviceName, StatusCode: resp.StatusCode, Message: "invalid response body"}
	}
	return domain.GistResult{ID: out.ID, URL: out.HTMLURL}, nil
}
