// Package client posts orders to the remote order intake endpoint. Method and
// path come from the embedded OpenAPI contract; the base URL is configured by
// the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-orderform/pkg/contract"
	"github.com/goliatone/go-orderform/pkg/order"
)

// DefaultBaseURL is the order intake host used when nothing is configured.
const DefaultBaseURL = "http://localhost:9009"

const (
	maxBodyBytes    = 1 << 20
	maxPlainMessage = 200
)

// Receipt is the accepted-order answer.
type Receipt struct {
	Message    string
	StatusCode int
	RequestID  string
}

// Client sends orders with a single attempt per call. It performs no retries;
// timeouts are whatever the caller's context and HTTP client impose.
type Client struct {
	baseURL   *url.URL
	method    string
	path      string
	http      *http.Client
	logger    *zap.Logger
	requestID func() string
}

// New constructs a client for the given base URL.
func New(baseURL string, options ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: base url %q must be http or https", raw)
	}

	c := &Client{
		baseURL:   parsed,
		http:      http.DefaultClient,
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	if c.method == "" {
		spec, err := contract.Default()
		if err != nil {
			return nil, fmt.Errorf("client: load contract: %w", err)
		}
		ep, err := spec.Endpoint(contract.CreateOrder)
		if err != nil {
			return nil, fmt.Errorf("client: %w", err)
		}
		c.method, c.path = ep.Method, ep.Path
	}
	return c, nil
}

// URL reports the absolute endpoint the client posts to.
func (c *Client) URL() string {
	return c.baseURL.JoinPath(c.path).String()
}

// Submit posts the order and returns the receipt on a 2xx answer. Any other
// answer yields a *RemoteError; network failures yield a *TransportError.
func (c *Client) Submit(ctx context.Context, values order.Values) (Receipt, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return Receipt{}, fmt.Errorf("client: encode order: %w", err)
	}

	reqID := c.requestID()
	req, err := http.NewRequestWithContext(ctx, c.method, c.URL(), bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	log := c.logger.With(zap.String("request_id", reqID), zap.String("url", req.URL.String()))
	log.Debug("submitting order", zap.Int("toppings", len(values.Toppings)))

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("order request failed", zap.Error(err))
		return Receipt{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Receipt{}, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    failureMessage(resp.StatusCode, body),
			Body:       body,
			RequestID:  reqID,
		}
		log.Warn("order rejected", zap.Int("status", resp.StatusCode), zap.String("message", remote.Message))
		return Receipt{}, remote
	}

	// A 2xx status means the order was taken; the body only carries the
	// confirmation text.
	message := ""
	if len(bytes.TrimSpace(body)) > 0 {
		var decoded messageBody
		if err := json.Unmarshal(body, &decoded); err != nil {
			log.Warn("order accepted with undecodable body", zap.Int("status", resp.StatusCode), zap.Error(err))
			message = plainMessage(body)
		} else {
			message = Sanitize(decoded.Message)
		}
	}
	receipt := Receipt{
		Message:    message,
		StatusCode: resp.StatusCode,
		RequestID:  reqID,
	}
	log.Info("order accepted", zap.Int("status", resp.StatusCode))
	return receipt, nil
}

// SubmitOrder satisfies form.Submitter.
func (c *Client) SubmitOrder(ctx context.Context, values order.Values) (string, error) {
	receipt, err := c.Submit(ctx, values)
	if err != nil {
		return "", err
	}
	return receipt.Message, nil
}

type messageBody struct {
	Message string `json:"message"`
}

// plainMessage returns a short non-JSON body as display text, or "" when
// the body is empty or too long to be a message.
func plainMessage(body []byte) string {
	text := Sanitize(string(body))
	if len(text) > maxPlainMessage {
		return ""
	}
	return text
}

func failureMessage(code int, body []byte) string {
	var decoded messageBody
	if err := json.Unmarshal(body, &decoded); err == nil {
		if msg := Sanitize(decoded.Message); msg != "" {
			return msg
		}
		return statusMessage(code)
	}
	if text := plainMessage(body); text != "" {
		return text
	}
	return statusMessage(code)
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitize strips markup from server supplied text so it can be shown in any
// surface. The result is plain text; HTML surfaces escape it again on output.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(trimmed)))
}
