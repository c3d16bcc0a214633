package client

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
)

const userAgent = "synth-launcher/" + Version

// Version is reported to servers and substituted into launch arguments
const Version = "0.1.0"

// HTTPClient handles all HTTP communication with the metadata and resource servers
type HTTPClient struct {
	httpClient     *http.Client
	transferClient *http.Client
}

// NewHTTPClient creates a client. Metadata requests give up after timeout in
// total; streamed transfers only bound connecting and waiting for response
// headers, so a large body may take as long as it needs. Zero disables both.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	transport := newTransport(timeout)
	return &HTTPClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transferClient: &http.Client{
			Transport: transport,
		},
	}
}

func newTransport(timeout time.Duration) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout
	return transport
}

// HTTP exposes the client used for transfers that stream to disk
func (c *HTTPClient) HTTP() *http.Client {
	return c.transferClient
}

// GetJSON fetches url and decodes the body into result
func (c *HTTPClient) GetJSON(ctx context.Context, url string, result any) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		logger.Error("%s: Error decoding response: %v", url, err)
		return errs.Decode("decode "+url, err)
	}

	return nil
}

// GetBytes fetches url and returns the whole body
func (c *HTTPClient) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Network("read "+url, err)
	}
	return body, nil
}

// Get performs a GET and returns the response when the status is 200.
// The caller owns the body.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	start := time.Now()
	logger.Debug("Starting GET request to %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Network("create request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Request to %s failed after %v: %v", url, time.Since(start), err)
		return nil, errs.Network("GET "+url, err)
	}

	logger.Debug("Request to %s completed in %v with status %d", url, time.Since(start), resp.StatusCode)

	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// CheckStatus turns a non-200 response into a network error carrying a snippet of the body
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	url := resp.Request.URL.String()
	logger.Error("%s: HTTP error %d: %s", url, resp.StatusCode, string(snippet))
	return errs.Newf(errs.KindNetwork, "GET "+url, "HTTP error %d: %s", resp.StatusCode, string(snippet))
}

// UserAgent is the header value sent with every request
func UserAgent() string {
	return userAgent
}
