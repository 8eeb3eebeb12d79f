package httpx

import (
	"crypto/tls"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout             = 30 * time.Second
	DefaultMaxConnsPerHost     = 512
	DefaultMaxIdleConnDuration = 10 * time.Second
	DefaultMaxResponseBodySize = 20 * 1024 * 1024
)

type ClientOptions struct {
	Timeout             time.Duration
	MaxConnsPerHost     int
	MaxIdleConnDuration time.Duration
	MaxResponseBodySize int
	InsecureSkipVerify  bool
	UserAgent           string
}

type ClientOption func(*ClientOptions)

func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) {
		o.Timeout = timeout
	}
}

func WithMaxConnsPerHost(max int) ClientOption {
	return func(o *ClientOptions) {
		o.MaxConnsPerHost = max
	}
}

func WithInsecureSkipVerify(skip bool) ClientOption {
	return func(o *ClientOptions) {
		o.InsecureSkipVerify = skip
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(o *ClientOptions) {
		o.UserAgent = userAgent
	}
}

// NewFastHTTPClient builds the shared outbound client used for provider
// calls. Read and write timeouts both follow Timeout.
func NewFastHTTPClient(opts ...ClientOption) *fasthttp.Client {
	options := &ClientOptions{
		Timeout:             DefaultTimeout,
		MaxConnsPerHost:     DefaultMaxConnsPerHost,
		MaxIdleConnDuration: DefaultMaxIdleConnDuration,
		MaxResponseBodySize: DefaultMaxResponseBodySize,
	}
	for _, opt := range opts {
		opt(options)
	}

	client := &fasthttp.Client{
		Name:                options.UserAgent,
		MaxConnsPerHost:     options.MaxConnsPerHost,
		MaxIdleConnDuration: options.MaxIdleConnDuration,
		MaxResponseBodySize: options.MaxResponseBodySize,
		ReadTimeout:         options.Timeout,
		WriteTimeout:        options.Timeout,
	}
	if options.InsecureSkipVerify {
		client.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // opt-in for local provider mocks
		}
	}
	return client
}
