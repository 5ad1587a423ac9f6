package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/bnema/cascade-chat/internal/ports"
)

const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta/"
	maxResponseBytes = 8 << 20
	// maxToolRounds bounds automatic function calling within one Send.
	maxToolRounds = 8
)

var (
	_ ports.BackendFactory = (*Client)(nil)
	_ ports.ModelCatalog   = (*Client)(nil)
)

// Client talks to the Gemini REST API. It opens chat sessions and lists the
// models visible to the API key.
type Client struct {
	BaseURL        string
	APIKey         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Tools          ports.ToolRegistry
	Clock          ports.Clock
	Logger         *slog.Logger
}

// Open checks that the model exists for this key before handing out a
// session, so unknown models and bad keys fail at construction.
func (c *Client) Open(ctx context.Context, model domain.ModelID, cfg domain.SessionConfig, history domain.History) (ports.BackendSession, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, &domain.BackendError{Kind: domain.ErrorKindAuth, Model: model, Err: domain.ErrMissingAPIKey}
	}

	// A quota answer to the model check does not say the model is wrong; the
	// first Send reports it again so callers see it as a quota failure.
	var resource modelResource
	if err := c.do(ctx, model, http.MethodGet, "models/"+url.PathEscape(string(model)), nil, nil, &resource); err != nil {
		if !errors.Is(err, domain.ErrQuotaExceeded) {
			return nil, err
		}
		c.logger().Debug("model check hit quota", "model", model, "error", err)
	}

	c.logger().Debug("gemini session opened", "model", model, "turns", len(history))

	return &session{
		client:  c,
		model:   model,
		config:  cfg,
		history: history.Clone(),
	}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var models []domain.ModelInfo
	pageToken := ""

	for {
		query := url.Values{}
		query.Set("pageSize", "1000")
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page listModelsResponse
		if err := c.do(ctx, "", http.MethodGet, "models", query, nil, &page); err != nil {
			return nil, err
		}

		for _, resource := range page.Models {
			models = append(models, domain.ModelInfo{
				ID:          modelIDFromName(resource.Name),
				DisplayName: resource.DisplayName,
				Methods:     resource.SupportedGenerationMethods,
			})
		}

		if page.NextPageToken == "" {
			return models, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) generate(ctx context.Context, model domain.ModelID, req generateContentRequest) (generateContentResponse, error) {
	var resp generateContentResponse
	path := "models/" + url.PathEscape(string(model)) + ":generateContent"
	if err := c.do(ctx, model, http.MethodPost, path, nil, req, &resp); err != nil {
		return generateContentResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, model domain.ModelID, method string, path string, query url.Values, body any, out any) error {
	endpoint, err := buildAPIURL(c.baseURL(), path)
	if err != nil {
		return transportError(model, "build request url", err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return transportError(model, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return transportError(model, "create request", err)
	}
	req.Header.Set("x-goog-api-key", c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return transportError(model, "call gemini api", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		backendErr := responseError(model, resp)
		c.logger().Debug("gemini api error", "model", model, "status", resp.StatusCode, "error", backendErr)
		return backendErr
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return transportError(model, "decode response", err)
	}

	return nil
}

func (c *Client) baseURL() string {
	if strings.TrimSpace(c.BaseURL) == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 2 * time.Minute
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func (c *Client) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func buildAPIURL(baseURL string, path string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	return parsed.String() + strings.TrimPrefix(path, "/"), nil
}
