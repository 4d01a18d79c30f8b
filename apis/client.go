package apis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"weatherwizard/manager"
)

const DefaultTimeout = 15 * time.Second

// Client performs the GET requests of every provider adapter. It never
// retries: a failed request is reported as ErrTransport or ErrProviderData.
type Client struct {
	http *resty.Client

	mu       sync.Mutex
	breakers map[manager.Provider]*gobreaker.CircuitBreaker
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:     resty.New().SetTimeout(timeout),
		breakers: make(map[manager.Provider]*gobreaker.CircuitBreaker),
	}
}

// FetchJSON requests path with params and decodes the JSON body into out.
func (c *Client) FetchJSON(ctx context.Context, provider manager.Provider, path string, params map[string]string, out interface{}) error {
	zerolog.Ctx(ctx).Debug().Str("provider", provider.String()).Str("url", path).Msg("request")

	result, err := c.breaker(provider).Execute(func() (interface{}, error) {
		response, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", manager.ErrTransport, err)
		}
		return response, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %v", manager.ErrTransport, provider, err)
	}
	if err != nil {
		return err
	}

	response := result.(*resty.Response)

	if response.StatusCode() != 200 {
		return fmt.Errorf("%w: status code: %d\n%s", manager.ErrProviderData, response.StatusCode(), indent(response.Body()))
	}

	if len(bytes.TrimSpace(response.Body())) == 0 {
		return fmt.Errorf("%w: %s returned no data", manager.ErrProviderData, provider)
	}

	if err := json.Unmarshal(response.Body(), out); err != nil {
		return fmt.Errorf("%w: decode: %v", manager.ErrProviderData, err)
	}

	return nil
}

// Available reports whether requests to provider may be sent, which is not
// the case while its circuit is open.
func (c *Client) Available(provider manager.Provider) bool {
	return c.breaker(provider).State() != gobreaker.StateOpen
}

func (c *Client) breaker(provider manager.Provider) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	cb, ok := c.breakers[provider]
	if !ok {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    provider.String(),
			Timeout: time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		})
		c.breakers[provider] = cb
	}
	return cb
}

func indent(body []byte) string {
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}
