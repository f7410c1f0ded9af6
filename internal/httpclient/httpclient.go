package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

type Options struct {
	PreferIPv4            bool
	Timeout               time.Duration
	ResponseHeaderTimeout time.Duration
}

func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	headerTimeout := opts.ResponseHeaderTimeout
	if headerTimeout <= 0 {
		headerTimeout = 120 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if opts.PreferIPv4 {
				return dialer.DialContext(ctx, "tcp4", addr)
			}
			return dialer.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// DefaultDownloadLimit caps a single fetched asset.
const DefaultDownloadLimit = 32 << 20

var ErrTooLarge = errors.New("download exceeds size limit")

// Downloaded is the body and resolved MIME type of a fetched asset.
type Downloaded struct {
	Bytes    []byte
	MimeType string
}

// Download fetches url with GET. Statuses >= 400 are errors carrying the
// response body. A limit <= 0 uses DefaultDownloadLimit.
func Download(ctx context.Context, client *http.Client, url string, limit int64) (Downloaded, error) {
	if client == nil {
		return Downloaded{}, errors.New("http client is nil")
	}
	if strings.TrimSpace(url) == "" {
		return Downloaded{}, errors.New("download url is empty")
	}
	if limit <= 0 {
		limit = DefaultDownloadLimit
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Downloaded{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Downloaded{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Downloaded{}, fmt.Errorf("download %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Downloaded{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return Downloaded{}, ErrTooLarge
	}

	return Downloaded{
		Bytes:    data,
		MimeType: DetectMimeType(resp.Header.Get("content-type"), data),
	}, nil
}

// DetectMimeType trusts the declared type unless it is missing or generic,
// then sniffs the payload and finally assumes JPEG.
func DetectMimeType(declared string, data []byte) string {
	mimeType := stripParams(declared)
	if (mimeType == "" || mimeType == "application/octet-stream") && len(data) > 0 {
		mimeType = stripParams(http.DetectContentType(data))
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/jpeg"
	}
	return mimeType
}

func stripParams(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return value
}
