package binance

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	exchangev1 "github.com/Akhileshait/tradenet/internal/domain/exchange/v1"
	"github.com/Akhileshait/tradenet/pkg/backoff"
	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
)

const orderPath = "/api/v3/order"

// Venue error codes. A duplicate client order id is refused with
// codeOrderRejected and a "Duplicate order" message.
const (
	codeOrderRejected = -2010
	codeNoSuchOrder   = -2013
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config configures the REST client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RecvWindow int64
}

// Client places spot orders through the Binance REST API.
type Client struct {
	config     Config
	httpClient *http.Client
	backoff    backoff.Backoff
	now        func() time.Time
	logger     logger.Interface
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBackoff replaces the retry delay policy.
func WithBackoff(b backoff.Backoff) Option {
	return func(cl *Client) { cl.backoff = b }
}

// NewClient creates a new exchange client.
func NewClient(config Config, log logger.Interface, opts ...Option) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	c := &Client{
		config:     config,
		httpClient: &http.Client{},
		backoff:    backoff.Default(),
		now:        time.Now,
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PlaceOrder submits req and returns the venue's acknowledgement. Transport
// failures and 5xx responses are retried up to MaxRetries times. Because such
// a failure may still have placed the order, each retry first looks the order
// up by its client order id and only resends when the venue has no record of
// it. A duplicate refusal resolves to the existing order. Timeouts and other
// rejections are returned immediately.
func (c *Client) PlaceOrder(ctx context.Context, req exchangev1.OrderRequest) (*exchangev1.Execution, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.pause(ctx, req, attempt, lastErr); err != nil {
				return nil, err
			}

			execution, err := c.QueryOrder(ctx, req)
			switch {
			case err == nil:
				return execution, nil
			case stdErrors.Is(err, exchangev1.ErrOrderNotFound):
				// not placed; resend below
			case errors.IsCode(err, errors.ExchangeError):
				lastErr = err
				continue
			default:
				return nil, err
			}
		}

		execution, err := c.placeOnce(ctx, req)
		if err == nil {
			return execution, nil
		}
		if isDuplicate(err) {
			return c.existing(ctx, req, err)
		}
		if !errors.IsCode(err, errors.ExchangeError) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// existing resolves a duplicate refusal to the order the venue already holds.
// The refusal is returned only when the venue reports no such order.
func (c *Client) existing(ctx context.Context, req exchangev1.OrderRequest, refusal error) (*exchangev1.Execution, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.pause(ctx, req, attempt, lastErr); err != nil {
				return nil, err
			}
		}

		execution, err := c.QueryOrder(ctx, req)
		switch {
		case err == nil:
			return execution, nil
		case stdErrors.Is(err, exchangev1.ErrOrderNotFound):
			return nil, refusal
		case !errors.IsCode(err, errors.ExchangeError):
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func (c *Client) pause(ctx context.Context, req exchangev1.OrderRequest, attempt int, lastErr error) error {
	c.logger.WarnContext(ctx, "retrying exchange order",
		logger.Field{Key: "action", Value: "binance.PlaceOrder"},
		logger.Field{Key: "orderId", Value: req.ClientOrderID},
		logger.Field{Key: "attempt", Value: attempt},
		logger.Field{Key: "error", Value: lastErr.Error()},
	)
	if err := c.backoff.Sleep(ctx, attempt); err != nil {
		return errors.Wrap(errors.ExchangeTimeoutError, err, "")
	}
	return nil
}

// QueryOrder fetches the order placed with req.ClientOrderID. It returns
// exchangev1.ErrOrderNotFound when the venue has no such order.
func (c *Client) QueryOrder(ctx context.Context, req exchangev1.OrderRequest) (*exchangev1.Execution, error) {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("origClientOrderId", req.ClientOrderID)
	execution, err := c.send(ctx, http.MethodGet, req.Credentials, c.signed(params, req.Credentials))
	var rejection *exchangev1.RejectionError
	if stdErrors.As(err, &rejection) && rejection.Code == codeNoSuchOrder {
		return nil, exchangev1.ErrOrderNotFound
	}
	return execution, err
}

func (c *Client) placeOnce(ctx context.Context, req exchangev1.OrderRequest) (*exchangev1.Execution, error) {
	return c.send(ctx, http.MethodPost, req.Credentials, c.signed(c.orderParams(req), req.Credentials))
}

// signed appends recvWindow, timestamp and the HMAC signature to params.
func (c *Client) signed(params url.Values, cred exchangev1.Credentials) string {
	if c.config.RecvWindow > 0 {
		params.Set("recvWindow", strconv.FormatInt(c.config.RecvWindow, 10))
	}
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))

	signer := NewSigner(cred.APISecret)
	defer signer.Wipe()

	query := params.Encode()
	return query + "&signature=" + signer.Sign(query)
}

// send performs one signed call on the order endpoint. POST carries the query
// in the body, GET in the URL.
func (c *Client) send(ctx context.Context, method string, cred exchangev1.Credentials, query string) (*exchangev1.Execution, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + orderPath
	var body io.Reader
	if method == http.MethodGet {
		endpoint += "?" + query
	} else {
		body = strings.NewReader(query)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(errors.ExchangeError, err, "")
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	httpReq.Header.Set("X-MBX-APIKEY", cred.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Wrap(errors.ExchangeTimeoutError, err, "")
		}
		return nil, errors.Wrap(errors.ExchangeError, err, "")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Wrap(errors.ExchangeTimeoutError, err, "")
		}
		return nil, errors.Wrap(errors.ExchangeError, err, "")
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, errors.New(errors.ExchangeError, fmt.Sprintf("exchange returned %d: %s", resp.StatusCode, truncate(payload)), "")
	case resp.StatusCode >= 400:
		return nil, rejection(resp.StatusCode, payload)
	}

	var out orderResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, errors.Wrap(errors.ExchangeError, err, "")
	}

	return out.toExecution(), nil
}

func (c *Client) orderParams(req exchangev1.OrderRequest) url.Values {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("type", string(req.Type))
	params.Set("quantity", req.Quantity.String())
	params.Set("newClientOrderId", req.ClientOrderID)
	params.Set("newOrderRespType", "FULL")
	return params
}

// rejection decodes a 4xx body. Rate limiting is retryable, every other 4xx
// is a definitive refusal.
func rejection(status int, body []byte) error {
	if status == http.StatusTooManyRequests || status == http.StatusTeapot {
		return errors.New(errors.ExchangeError, fmt.Sprintf("exchange rate limited (%d)", status), "")
	}
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.Code == 0 {
		return &exchangev1.RejectionError{HTTPStatus: status, Message: truncate(body)}
	}
	return &exchangev1.RejectionError{HTTPStatus: status, Code: e.Code, Message: e.Msg}
}

func isDuplicate(err error) bool {
	var rejection *exchangev1.RejectionError
	return stdErrors.As(err, &rejection) &&
		rejection.Code == codeOrderRejected &&
		strings.Contains(strings.ToLower(rejection.Message), "duplicate order")
}

func isTimeout(ctx context.Context, err error) bool {
	if stdErrors.Is(ctx.Err(), context.DeadlineExceeded) || stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stdErrors.As(err, &netErr) && netErr.Timeout()
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
