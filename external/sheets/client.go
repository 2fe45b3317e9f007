package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/attendance"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/domain/profile"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/logging"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/platform/resilience"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
)

const (
	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 1 << 20
	snippetRunes   = 200

	actionSummary   = "summary"
	actionSetRSVP   = "setRsvp"
	actionAttendees = "attendees"

	labelSummary   = "Summary"
	labelRSVP      = "RSVP"
	labelAttendees = "Attendees"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the spreadsheet web app that stores attendance. Every call
// is a single request; nothing is retried.
type Client struct {
	httpClient     *http.Client
	baseURL        *url.URL
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight[attendance.Summary]
	// writeGen moves on after every attendance write so a summary read issued
	// later never joins one that was sent before the write.
	writeGen atomic.Uint64
}

var _ attendance.Gateway = (*Client)(nil)

func NewClient(cfg ClientConfig) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}, nil
}

// FetchSummary reads per-session counts and, when userKey is set, the caller's
// own attendance. Identical concurrent reads share one request, but only
// with reads issued since the last attendance write.
func (c *Client) FetchSummary(ctx context.Context, sessionIDs []string, userKey string) (attendance.Summary, error) {
	query := url.Values{}
	query.Set("action", actionSummary)
	query.Set("eventIds", strings.Join(sessionIDs, ","))
	query.Set("userKey", userKey)

	key := strconv.FormatUint(c.writeGen.Load(), 10) + "|" + query.Encode()
	summary, err, shared := c.flight.Do(ctx, key, func(ctx context.Context) (attendance.Summary, error) {
		var payload summaryResponse
		if err := c.getJSON(ctx, labelSummary, query, &payload); err != nil {
			return attendance.Summary{}, err
		}
		return payload.toSummary(), nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return attendance.Summary{}, &usecase.NetworkError{Action: labelSummary, Cause: ctxErr}
		}
		return attendance.Summary{}, err
	}

	c.logger.DebugContext(ctx, "sheets summary fetched",
		"session_count", len(sessionIDs),
		"with_user", userKey != "",
		"shared", shared,
	)
	return summary, nil
}

// SetAttendance writes one attendance record. The new state is only visible
// through a later FetchSummary.
func (c *Client) SetAttendance(ctx context.Context, sessionID string, p *profile.Profile, attending bool) error {
	if p == nil || !p.Complete() {
		return fmt.Errorf("%w: please save your profile first", usecase.ErrPrecondition)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", usecase.ErrInvalidInput)
	}

	pos := p.Position
	if pos == "" {
		pos = profile.PositionSkater
	}

	form := url.Values{}
	form.Set("action", actionSetRSVP)
	form.Set("eventId", sessionID)
	form.Set("userKey", p.UserKey())
	form.Set("first", p.FirstName)
	form.Set("last", p.LastName)
	form.Set("pos", pos.String())
	form.Set("attending", strconv.FormatBool(attending))

	var payload statusResponse
	err := c.postForm(ctx, labelRSVP, form, &payload)
	// Even a failed write may have landed remotely.
	c.writeGen.Add(1)
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "sheets attendance updated",
		"session_id", sessionID,
		"user_key", p.UserKey(),
		"attending", attending,
	)
	return nil
}

// FetchAttendees lists who is signed up for one session, normalized for display.
func (c *Client) FetchAttendees(ctx context.Context, sessionID string) ([]attendance.Attendee, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("action", actionAttendees)
	query.Set("eventId", sessionID)

	var payload attendeesResponse
	if err := c.getJSON(ctx, labelAttendees, query, &payload); err != nil {
		return nil, err
	}

	out := make([]attendance.Attendee, 0, len(payload.Attendees))
	for _, item := range payload.Attendees {
		out = append(out, attendance.NormalizeAttendee(looseString(item.Display), looseString(item.Pos)))
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, label string, query url.Values, target envelope) error {
	fullURL := c.withQuery(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return crerr.Wrapf(err, "build %s request", strings.ToLower(label))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	return c.do(ctx, label, req, target)
}

func (c *Client) postForm(ctx context.Context, label string, form url.Values, target envelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return crerr.Wrapf(err, "build %s request", strings.ToLower(label))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, label, req, target)
}

func (c *Client) do(ctx context.Context, label string, req *http.Request, target envelope) error {
	var raw []byte
	send := func() error {
		var sendErr error
		raw, sendErr = c.execute(ctx, label, req)
		return sendErr
	}

	var err error
	if c.circuitEnabled {
		err = c.breaker.Execute(send, isTransient)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "sheets circuit breaker rejected request", "action", label, "state", c.breaker.State())
			return &usecase.NetworkError{Action: label, Cause: err}
		}
	} else {
		err = send()
	}
	if err != nil {
		return err
	}

	return decodeEnvelope(label, raw, target)
}

func (c *Client) execute(ctx context.Context, label string, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		c.logger.WarnContext(ctx, "sheets request failed", "action", label, "error", err)
		return nil, &usecase.NetworkError{Action: label, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &usecase.NetworkError{Action: label, Cause: crerr.Wrap(err, "read response body")}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "sheets non-2xx response",
			"action", label,
			"status_code", resp.StatusCode,
			"body", abbreviateBody(raw),
		)
		return nil, &usecase.NetworkError{Action: label, StatusCode: resp.StatusCode}
	}

	return raw, nil
}

func (c *Client) withQuery(query url.Values) string {
	u := *c.baseURL
	merged := u.Query()
	for key, values := range query {
		merged[key] = values
	}
	u.RawQuery = merged.Encode()
	return u.String()
}

func decodeEnvelope(label string, raw []byte, target envelope) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return &usecase.ProtocolError{Action: label, Snippet: snippet(raw), Cause: err}
	}
	if !target.succeeded() {
		message := strings.TrimSpace(target.failureMessage())
		if message == "" {
			message = defaultFailureMessage(label)
		}
		return &usecase.ServerError{Action: label, Message: message}
	}
	return nil
}

func defaultFailureMessage(label string) string {
	if label == labelRSVP {
		return "RSVP update failed"
	}
	return label + " request failed"
}

func parseBaseURL(raw string) (*url.URL, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, crerr.New("sheets base url is required")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return nil, crerr.Wrap(err, "parse sheets base url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, crerr.Newf("sheets base url must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, crerr.New("sheets base url host is empty")
	}
	return parsed, nil
}

// isTransient decides what counts against the breaker. Cancelled requests and
// 4xx rejections do not.
func isTransient(err error) bool {
	var netErr *usecase.NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return netErr.Transient()
}

func abbreviateBody(raw []byte) string {
	const maxLen = 512
	text := strings.TrimSpace(string(raw))
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "...(truncated)"
}

func snippet(raw []byte) string {
	runes := []rune(string(raw))
	if len(runes) <= snippetRunes {
		return string(runes)
	}
	return string(runes[:snippetRunes])
}

func looseString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if !v {
			return ""
		}
		return "true"
	default:
		return ""
	}
}
