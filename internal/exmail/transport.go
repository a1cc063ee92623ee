// Package exmail is a client for the corporate webmail provider's REST API.
package exmail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/limiter"
)

// DefaultBaseURL is the provider's API root.
const DefaultBaseURL = "https://api.exmail.qq.com/cgi-bin/"

// maxErrorBody limits how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// Options configures a Transport.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Limiter paces every request; nil means no pacing.
	Limiter limiter.Limiter
	// BreakerFailures is the number of consecutive transport failures that opens
	// the circuit; 0 disables the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the circuit stays open before a trial request.
	BreakerTimeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Transport performs JSON calls against the API and decodes the errcode envelope.
// Safe for concurrent use.
type Transport struct {
	base    *url.URL
	http    *http.Client
	lim     limiter.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     *zap.Logger
}

// NewTransport validates options and constructs a Transport.
func NewTransport(opts Options, log *zap.Logger) (*Transport, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	lim := opts.Limiter
	if lim == nil {
		lim = limiter.Nop{}
	}

	t := &Transport{base: base, http: hc, lim: lim, log: log}
	if opts.BreakerFailures > 0 {
		threshold := opts.BreakerFailures
		t.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "exmail-api",
			MaxRequests: 1,
			Timeout:     opts.BreakerTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	return t, nil
}

// call sends one request and decodes the body into out. A non-zero errcode is
// returned as *errs.RemoteError; HTTP and decode failures are plain errors.
func (t *Transport) call(
	ctx context.Context, method, op string, query url.Values, body any, out response,
) error {
	u := t.base.ResolveReference(&url.URL{Path: op, RawQuery: query.Encode()})

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		payload = b
	}

	start := time.Now()
	raw, err := t.send(ctx, method, u.String(), payload)
	if err != nil {
		t.log.Debug("exmail call", zap.String("op", op), zap.Duration("dur", time.Since(start)), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	st := out.status()
	// only metadata, payloads may carry personal data
	t.log.Debug("exmail call",
		zap.String("op", op),
		zap.Duration("dur", time.Since(start)),
		zap.Int("errcode", st.ErrCode),
	)
	if st.ErrCode != 0 {
		return &errs.RemoteError{Op: op, Code: st.ErrCode, Msg: st.ErrMsg}
	}
	return nil
}

// send is the part guarded by the circuit breaker: only transport failures count.
func (t *Transport) send(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	if err := t.lim.Wait(ctx); err != nil {
		return nil, err
	}
	do := func() ([]byte, error) { return t.roundTrip(ctx, method, rawURL, payload) }
	if t.breaker == nil {
		return do()
	}
	return t.breaker.Execute(do)
}

func (t *Transport) roundTrip(ctx context.Context, method, rawURL string, payload []byte) ([]byte, error) {
	var rd io.Reader = http.NoBody
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, redact(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return io.ReadAll(resp.Body)
}

// redact strips credentials from the URL embedded in *url.Error so that the
// error can be logged.
func redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return err
	}
	q := u.Query()
	for _, k := range []string{"access_token", "corpsecret"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
}
