package oanda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/peter-kozarec/oanda/pkg/utility"
)

// Client talks to the v3 REST api of one account. It holds no mutable state and
// is safe for concurrent use.
type Client struct {
	http      *resty.Client
	logger    *zap.Logger
	accountId string
	authToken string
	url       string
}

func NewClient(logger *zap.Logger, httpClient *resty.Client, accountId, authToken, baseUrl string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = newHttpClient(logger)
	}
	return &Client{
		http:      httpClient,
		logger:    logger,
		accountId: accountId,
		authToken: authToken,
		url:       baseUrl,
	}
}

func NewLiveClient(logger *zap.Logger, accountId, authToken string) *Client {
	return NewClient(logger, nil, accountId, authToken, LiveURL)
}

func NewPracticeClient(logger *zap.Logger, accountId, authToken string) *Client {
	return NewClient(logger, nil, accountId, authToken, PracticeURL)
}

func newHttpClient(logger *zap.Logger) *resty.Client {
	return resty.New().SetLogger(logger.Sugar())
}

// Instruments performs exactly one GET of the account instrument list. Failures
// are a *RequestError, *StatusError or *DecodeError.
func (client *Client) Instruments(ctx context.Context) ([]Instrument, error) {
	endpoint := fmt.Sprintf("%s/v3/accounts/%s/instruments", client.url, url.PathEscape(client.accountId))
	requestId := utility.NewRequestID()

	client.logger.Debug("request",
		zap.String("method", http.MethodGet),
		zap.String("url", endpoint),
		zap.Stringer("request_id", requestId))

	start := time.Now()
	resp, err := client.http.R().
		SetContext(ctx).
		SetAuthToken(client.authToken).
		SetHeader("Content-Type", "application/json").
		Get(endpoint)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	client.logger.Debug("response",
		zap.Stringer("request_id", requestId),
		zap.Int("status", resp.StatusCode()),
		zap.Int("size", len(resp.Body())),
		zap.Duration("duration", time.Since(start)))

	if !resp.IsSuccess() {
		return nil, &StatusError{Code: resp.StatusCode()}
	}

	return DecodeInstruments(resp.Body())
}
