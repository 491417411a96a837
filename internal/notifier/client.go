package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Status classifies a single delivery attempt.
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the logged result of one attempt. Reason is set for skipped
// attempts, Err for failed ones.
type Outcome struct {
	Status     Status
	Reason     string
	Err        error
	StatusCode int
	Body       string
}

// Sent reports whether the gateway accepted the request.
func (o Outcome) Sent() bool { return o.Status == StatusSent }

var errNoCredential = errors.New("push credential not configured")

// Client posts call invitations to the push gateway. It never retries.
type Client struct {
	http       *resty.Client
	endpoint   string
	credential string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient creates a gateway client. credential is sent as
// "Authorization: key=<credential>".
func NewClient(endpoint, credential string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:       httpClient,
		endpoint:   endpoint,
		credential: credential,
		timeout:    timeout,
		logger:     logger,
	}
}

// Send makes one delivery attempt and returns its outcome. An invitation
// without a recipient token is skipped without any request.
func (c *Client) Send(ctx context.Context, inv Invitation) Outcome {
	if inv.RecipientToken == "" {
		return Outcome{Status: StatusSkipped, Reason: "recipient has no push token"}
	}
	if c.credential == "" {
		return Outcome{Status: StatusFailed, Err: errNoCredential}
	}

	body, err := Encode(BuildPayload(inv))
	if err != nil {
		return Outcome{Status: StatusFailed, Err: err}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "key="+c.credential).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("push request failed: %w", err)}
	}

	if !resp.IsSuccess() {
		return Outcome{
			Status:     StatusFailed,
			Err:        fmt.Errorf("push gateway returned %d", resp.StatusCode()),
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return Outcome{Status: StatusSent, StatusCode: resp.StatusCode(), Body: resp.String()}
}

// Notify sends inv on its own goroutine and logs the outcome. The returned
// channel receives exactly one outcome; callers are free to ignore it.
func (c *Client) Notify(inv Invitation) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		outcome := c.Send(ctx, inv)
		c.log(inv, outcome)
		out <- outcome
		close(out)
	}()
	return out
}

func (c *Client) log(inv Invitation, o Outcome) {
	fields := []zap.Field{
		zap.String("channel_name", inv.ChannelName),
		zap.String("status", string(o.Status)),
	}
	switch o.Status {
	case StatusSent:
		c.logger.Info("Call push sent", append(fields, zap.String("body", o.Body))...)
	case StatusSkipped:
		c.logger.Info("Call push skipped", append(fields, zap.String("reason", o.Reason))...)
	case StatusFailed:
		c.logger.Warn("Call push failed", append(fields,
			zap.Error(o.Err),
			zap.Int("status_code", o.StatusCode),
			zap.String("body", o.Body),
		)...)
	}
}
