// Package remote fetches the product catalog from the back-office service.
// The service fronts the relational database; lector only posts the saved
// connection settings and reads back JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/lector/internal/logger"
	"github.com/mesh-intelligence/lector/pkg/types"
)

// Request paths on the back-office service.
const (
	ProductsPath = "/api/products"
	ConnectPath  = "/api/connect"
)

// Default per-request deadlines.
const (
	DefaultProductsTimeout = 30 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
)

// Remote errors. Callers distinguish them with errors.Is.
var (
	ErrUnreachable = errors.New("remote unreachable")
	ErrTimeout     = errors.New("remote timed out")
	ErrHTTPStatus  = errors.New("HTTP error")
	ErrRemote      = errors.New("remote reported failure")
)

// wireProduct is one catalog row as the service sends it.
type wireProduct struct {
	Code        string `json:"codigo"`
	Description string `json:"descripcion"`
}

// response is the envelope of both endpoints.
type response struct {
	Success  bool          `json:"success"`
	Count    int           `json:"count"`
	Products []wireProduct `json:"products"`
	Message  string        `json:"message"`
}

// Client talks to one back-office base URL. It never retries.
type Client struct {
	baseURL         string
	http            *http.Client
	logger          *zap.Logger
	productsTimeout time.Duration
	connectTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = logger.OrNop(l) }
}

// WithTimeouts overrides the products and connect deadlines. Zero keeps the
// default.
func WithTimeouts(products, connect time.Duration) Option {
	return func(c *Client) {
		if products > 0 {
			c.productsTimeout = products
		}
		if connect > 0 {
			c.connectTimeout = connect
		}
	}
}

// New returns a client for baseURL, e.g. "http://localhost:3002".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		http:            &http.Client{},
		logger:          zap.NewNop(),
		productsTimeout: DefaultProductsTimeout,
		connectTimeout:  DefaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchProducts posts settings to the products endpoint and returns the
// catalog snapshot in the order the service sent it.
func (c *Client) FetchProducts(ctx context.Context, settings types.ServerSettings) ([]types.Product, error) {
	resp, err := c.post(ctx, ProductsPath, c.productsTimeout, settings)
	if err != nil {
		return nil, err
	}

	products := make([]types.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, types.Product{Code: p.Code, Description: p.Description})
	}
	if resp.Count != 0 && resp.Count != len(products) {
		c.logger.Warn("product count mismatch",
			zap.Int("reported", resp.Count), zap.Int("received", len(products)))
	}
	return products, nil
}

// TestConnection asks the service to open a connection with settings and
// returns the service's message on success.
func (c *Client) TestConnection(ctx context.Context, settings types.ServerSettings) (string, error) {
	resp, err := c.post(ctx, ConnectPath, c.connectTimeout, settings)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// post sends body as JSON and decodes the envelope. A success=false
// envelope is returned as ErrRemote.
func (c *Client) post(ctx context.Context, path string, timeout time.Duration, body any) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, classify(url, err)
	}
	defer res.Body.Close()

	c.logger.Debug("remote request",
		zap.String("url", url),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, classify(url, err)
	}

	var env response
	decodeErr := json.Unmarshal(data, &env)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if decodeErr == nil && env.Message != "" {
			return nil, fmt.Errorf("%w: %d: %s", ErrHTTPStatus, res.StatusCode, env.Message)
		}
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, res.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", url, decodeErr)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", ErrRemote, env.Message)
	}
	return &env, nil
}

// classify maps a transport error to ErrTimeout or ErrUnreachable.
func classify(url string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%s: %w: %w", url, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", url, ErrUnreachable, err)
}
