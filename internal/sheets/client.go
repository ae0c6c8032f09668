package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
)

// TokenSourcer hands out a token source bound to a request context.
type TokenSourcer interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
}

type Client struct {
	tokens   TokenSourcer
	endpoint string
	base     http.RoundTripper
	timeout  time.Duration
	logger   *zap.Logger
}

type ClientOption func(*Client)

// WithEndpoint overrides the Sheets API base URL. It must end with a slash.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = strings.TrimSpace(endpoint) }
}

func WithTransport(base http.RoundTripper) ClientOption {
	return func(c *Client) { c.base = base }
}

func NewClient(tokens TokenSourcer, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		tokens:  tokens,
		timeout: requestTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchRange(ctx context.Context, spreadsheetID, rng string) (model.Sheet, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" || strings.TrimSpace(rng) == "" {
		return model.Sheet{}, &apperr.ConfigurationError{Message: "Google Sheets configuration is incomplete"}
	}

	values, err := c.requestValues(ctx, spreadsheetID, rng)
	if err != nil {
		return model.Sheet{}, err
	}

	return ParseValues(values), nil
}

func (c *Client) requestValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	httpClient := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: c.tokens.TokenSource(ctx),
			Base:   c.base,
		},
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	srv, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, &apperr.UpstreamDataError{Message: "create Google Sheets service", Err: err}
	}

	resp, err := srv.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		var (
			authErr *apperr.AuthError
			cfgErr  *apperr.ConfigurationError
		)
		if errors.As(err, &authErr) || errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("authorize sheets request: %w", err)
		}

		status, message := 0, err.Error()
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			status = apiErr.Code
			message = apiErr.Message
			if message == "" {
				message = apiErr.Body
			}
		}

		c.logger.Warn("Google Sheets API request failed",
			zap.String("spreadsheet_id", spreadsheetID),
			zap.String("range", rng),
			zap.Int("status", status),
			zap.String("message", message),
		)
		return nil, &apperr.UpstreamDataError{Message: "failed to fetch data from Google Sheets"}
	}

	if resp.Values == nil {
		return [][]interface{}{}, nil
	}
	return resp.Values, nil
}
