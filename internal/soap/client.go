// Package soap is a client for the Cisco Unified CM ControlCenterServices
// SOAP API (soapDoControlServices and soapGetServiceStatus).
package soap

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"cucm-service-cli/internal/action"
)

const (
	DefaultPort    = 8443
	DefaultPath    = "/controlcenterservice2/services/ControlCenterServices"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 8 << 20
)

// Options configures a Client. The zero value of Port, Path and Timeout
// selects the defaults above.
type Options struct {
	Username string
	Password string

	Port    int
	Path    string
	Timeout time.Duration

	// InsecureSkipVerify disables certificate checks. Ignored when CAFile is set.
	InsecureSkipVerify bool
	CAFile             string

	// Debug logs request and response headers and bodies at debug level.
	Debug  bool
	Logger *slog.Logger
}

// Client talks to one server.
type Client struct {
	url    string
	opts   Options
	http   *http.Client
	logger *slog.Logger
}

// New builds a client for the server at address. address may carry its
// own port, which then takes precedence over opts.Port.
func New(address string, opts Options) (*Client, error) {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tlsConfig, err := tlsConfig(opts)
	if err != nil {
		return nil, err
	}

	host := address
	if _, _, err := net.SplitHostPort(address); err != nil {
		host = net.JoinHostPort(address, strconv.Itoa(opts.Port))
	}

	return &Client{
		url:  "https://" + host + opts.Path,
		opts: opts,
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: tlsConfig,
			},
		},
		logger: logger.With(slog.String("url", "https://"+host+opts.Path)),
	}, nil
}

func tlsConfig(opts Options) (*tls.Config, error) {
	if opts.CAFile == "" {
		return &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify}, nil
	}
	pem, err := os.ReadFile(opts.CAFile)
	if err != nil {
		return nil, fmt.Errorf("reading CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", opts.CAFile)
	}
	return &tls.Config{RootCAs: pool}, nil
}

// URL returns the service endpoint the client posts to.
func (c *Client) URL() string { return c.url }

// DoControlServices sends the control command for the named services and
// returns the status each service reported immediately afterwards.
func (c *Client) DoControlServices(ctx context.Context, ctl action.Action, services []string) ([]ServiceInfo, error) {
	const op = "soapDoControlServices"
	body, err := render(doControlServicesTmpl, requestData{ControlType: string(ctl), Services: services})
	if err != nil {
		return nil, err
	}
	env, err := c.call(ctx, op, body)
	if err != nil {
		return nil, err
	}
	return env.Body.Response.Return.ServiceInfoList.Items, nil
}

// GetServiceStatus returns the current status of the named services.
func (c *Client) GetServiceStatus(ctx context.Context, services []string) ([]ServiceInfo, error) {
	const op = "soapGetServiceStatus"
	body, err := render(getServiceStatusTmpl, requestData{Services: services})
	if err != nil {
		return nil, err
	}
	env, err := c.call(ctx, op, body)
	if err != nil {
		return nil, err
	}
	return env.Body.Response.Return.ServiceInfoList.Items, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) call(ctx context.Context, op string, body []byte) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", strconv.Quote(op))
	req.SetBasicAuth(c.opts.Username, c.opts.Password)

	if c.opts.Debug {
		c.logger.Debug("soap request", slog.String("operation", op),
			slog.Any("headers", req.Header), slog.String("body", string(body)))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: reading response: %w", op, err)
	}

	if c.opts.Debug {
		c.logger.Debug("soap response", slog.String("operation", op), slog.Int("status", resp.StatusCode),
			slog.Any("headers", resp.Header), slog.String("body", string(data)))
	}

	var env envelope
	if err := xml.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%s: HTTP %d: %s", op, resp.StatusCode, snippet(data))
		}
		return nil, fmt.Errorf("%s: decoding response: %w", op, err)
	}
	if env.Body.Fault != nil {
		return nil, newFault(op, env.Body.Fault)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: HTTP %d: %s", op, resp.StatusCode, snippet(data))
	}
	return &env, nil
}

func snippet(data []byte) string {
	const limit = 200
	s := string(bytes.TrimSpace(data))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
