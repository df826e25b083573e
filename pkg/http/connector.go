package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// SessionHeader correlates every backend call with the client session.
const SessionHeader = "X-Session-ID"

type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	return &Connector{
		baseURL:    config.BaseURL,
		httpClient: newClient(options...),
		logger:     config.Logger,
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	query       url.Values
	requireBody bool
	onProgress  func(sent, total int64)
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// WithSessionID attaches the session correlation header when the id is known.
func WithSessionID(sessionID string) RequestOpt {
	return func(c *requestConfig) {
		if sessionID == "" {
			return
		}
		WithHeader(SessionHeader, sessionID)(c)
	}
}

func WithQuery(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.query == nil {
			c.query = url.Values{}
		}
		c.query.Set(key, value)
	}
}

// WithRequiredBody makes an empty 2xx body an error instead of a no-op.
func WithRequiredBody() RequestOpt {
	return func(c *requestConfig) {
		c.requireBody = true
	}
}

// WithUploadProgress reports how many request body bytes the transport has consumed.
func WithUploadProgress(fn func(sent, total int64)) RequestOpt {
	return func(c *requestConfig) {
		c.onProgress = fn
	}
}

func (c *Connector) buildURL(endpoint string, cfg *requestConfig) string {
	target := c.baseURL + endpoint

	if len(cfg.query) > 0 {
		target += "?" + cfg.query.Encode()
	}

	return target
}

func applyOpts(opts []RequestOpt) *requestConfig {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// DoRequest sends a JSON request and decodes a JSON response into respBody.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	cfg := applyOpts(opts)

	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
		// Attach payload to context for logging transport
		ctx = context.WithValue(ctx, payloadContextKey{}, jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(endpoint, cfg), bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	bodyBytes, err := c.do(req, cfg)
	if err != nil {
		return err
	}

	if respBody == nil {
		return nil
	}

	if len(bytes.TrimSpace(bodyBytes)) == 0 {
		if cfg.requireBody {
			return ErrEmptyResponse
		}
		return nil
	}

	return DecodeJSON(bodyBytes, respBody)
}

// DoTextRequest performs a request whose response is plain text.
func (c *Connector) DoTextRequest(ctx context.Context, method, endpoint string, opts ...RequestOpt) (string, error) {
	cfg := applyOpts(opts)

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(endpoint, cfg), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, application/json")

	bodyBytes, err := c.do(req, cfg)
	if err != nil {
		return "", err
	}

	return string(bodyBytes), nil
}

// DoMultipartRequest performs a multipart request and returns the raw response body.
// Decoding is left to the caller so that empty and malformed payloads can be classified.
func (c *Connector) DoMultipartRequest(ctx context.Context, method, endpoint string, prepareBody func(*multipart.Writer) error, opts ...RequestOpt) ([]byte, error) {
	cfg := applyOpts(opts)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := prepareBody(writer); err != nil {
		return nil, fmt.Errorf("prepare multipart body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	total := int64(body.Len())
	var reader io.Reader = body
	if cfg.onProgress != nil {
		reader = &progressReader{reader: body, total: total, onProgress: cfg.onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(endpoint, cfg), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = total

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.do(req, cfg)
}

func (c *Connector) do(req *http.Request, cfg *requestConfig) ([]byte, error) {
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPError(resp.StatusCode, bodyBytes)
	}

	return bodyBytes, nil
}

type progressReader struct {
	reader     io.Reader
	sent       int64
	total      int64
	onProgress func(sent, total int64)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.sent += int64(n)
		r.onProgress(r.sent, r.total)
	}
	return n, err
}
