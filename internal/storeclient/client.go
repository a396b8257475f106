package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/server"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"go.uber.org/zap"
)

const (
	defaultTimeout      = 15 * time.Second
	maxErrorBodyBytes   = 64 * 1024
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
	worksPath           = "/works"
)

var (
	errMissingBaseURL = errors.New("store url is required")
	errMissingAPIKey  = errors.New("store api key is required")
)

// StatusError reports a non-success response from the store API.
type StatusError struct {
	StatusCode int
	Slug       string
	Code       string
	Fields     []works.FieldError
}

func (e *StatusError) Error() string {
	message := fmt.Sprintf("store responded %d", e.StatusCode)
	if e.Slug != "" {
		message += " " + e.Slug
	}
	if e.Code != "" {
		message += " (" + e.Code + ")"
	}
	return message
}

// Unwrap maps the response onto the works sentinel errors where one applies.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return works.ErrWorkNotFound
	case e.StatusCode == http.StatusBadRequest && len(e.Fields) > 0:
		return &works.ValidationError{Errors: e.Fields}
	case e.StatusCode == http.StatusBadRequest:
		return works.ErrValidation
	}
	return nil
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the store API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errMissingBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errMissingAPIKey
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// List fetches every work in the requested order.
func (c *Client) List(ctx context.Context, ordering works.Ordering) ([]works.Work, error) {
	query := url.Values{}
	query.Set("order_by", string(ordering.Field))
	query.Set("direction", string(ordering.Direction))

	var response server.WorksResponse
	if err := c.do(ctx, http.MethodGet, worksPath+"?"+query.Encode(), nil, http.StatusOK, &response); err != nil {
		return nil, err
	}

	result := make([]works.Work, 0, len(response.Works))
	for _, payload := range response.Works {
		result = append(result, payload.Work())
	}
	return result, nil
}

// Insert stores a new work and returns it with its assigned identifier.
func (c *Client) Insert(ctx context.Context, record works.Record) (works.Work, error) {
	var response server.WorkResponse
	if err := c.do(ctx, http.MethodPost, worksPath, server.NewRecordPayload(record), http.StatusCreated, &response); err != nil {
		return works.Work{}, err
	}
	return response.Work.Work(), nil
}

// Update replaces the stored record of id.
func (c *Client) Update(ctx context.Context, id works.ID, record works.Record) error {
	return c.do(ctx, http.MethodPut, workPath(id), server.NewRecordPayload(record), http.StatusNoContent, nil)
}

// Delete removes the work with the given identifier.
func (c *Client) Delete(ctx context.Context, id works.ID) error {
	return c.do(ctx, http.MethodDelete, workPath(id), nil, http.StatusNoContent, nil)
}

func workPath(id works.ID) string {
	return worksPath + "/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set(headerAuthorization, "Bearer "+c.apiKey)
	if body != nil {
		request.Header.Set(headerContentType, contentTypeJSON)
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	c.logger.Debug("store request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", response.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if response.StatusCode != wantStatus {
		return decodeStatusError(response)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeStatusError(response *http.Response) error {
	statusErr := &StatusError{StatusCode: response.StatusCode}
	var payload server.ErrorPayload
	if err := json.NewDecoder(io.LimitReader(response.Body, maxErrorBodyBytes)).Decode(&payload); err == nil {
		statusErr.Slug = payload.Error
		statusErr.Code = payload.Code
		for _, field := range payload.Fields {
			statusErr.Fields = append(statusErr.Fields, works.FieldError{Field: field.Field, Message: field.Message})
		}
	}
	return statusErr
}
