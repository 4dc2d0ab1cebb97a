// Package qbit is the qBittorrent WebUI backend for qlimitd. It implements
// the limiter.SpeedLimiter capability over the v2 Web API.
//
// The capability interface speaks KB/s with -1 meaning unlimited; the
// qBittorrent wire speaks bytes/s with 0 meaning unlimited. That
// translation happens here and nowhere else.
package qbit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/qlimitd/qlimitd/internal/limiter"
	"github.com/qlimitd/qlimitd/internal/rules"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

var (
	ErrLoginFailed = errors.New("qbittorrent login failed")
	// ErrUnsupportedDownloader is returned when the target does not expose
	// the v2 Web API, i.e. it is not a qBittorrent of a supported version.
	ErrUnsupportedDownloader = errors.New("target is not a supported qbittorrent instance")
)

// DefaultTimeout is the per-attempt HTTP timeout used when
// Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Options configures a Client.
type Options struct {
	// URL is the WebUI base URL, e.g. "http://localhost:8080".
	URL      string
	Username string
	Password string
	// Timeout bounds each HTTP attempt. Transient failures are retried
	// up to two times, so total wall time can reach three attempts plus
	// backoff; pass a context deadline to cap a whole call. Zero means
	// DefaultTimeout.
	Timeout time.Duration
}

// Client talks to one qBittorrent WebUI instance. It is safe for
// concurrent use; concurrent limit-set calls are last-write-wins on the
// qBittorrent side.
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string
	log      logger.Logger

	mu       sync.Mutex
	loggedIn bool
}

// NewClient creates a client for the WebUI at opts.URL. No connection is
// made until the first call.
func NewClient(opts Options, log logger.Logger) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("downloader url is required")
	}
	base, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid downloader url %q: %w", opts.URL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid downloader url %q: scheme must be http or https", opts.URL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Jar = jar
	rc.HTTPClient.Timeout = timeout
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil

	return &Client{
		base:     base,
		http:     rc.StandardClient(),
		username: opts.Username,
		password: opts.Password,
		log:      log,
	}, nil
}

// Check verifies the target speaks the v2 Web API. It satisfies the
// capability-check half of limiter.SpeedLimiter.
func (c *Client) Check(ctx context.Context) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	body, err := c.get(ctx, "/api/v2/app/webapiVersion")
	if err != nil {
		return err
	}
	version := strings.TrimSpace(body)
	if !strings.HasPrefix(version, "2.") {
		return fmt.Errorf("%w: web api version %q", ErrUnsupportedDownloader, version)
	}
	return nil
}

// SetSpeedLimit sets the global transfer limits. Limits are in KB/s with
// rules.Unlimited meaning no limit.
func (c *Client) SetSpeedLimit(ctx context.Context, uploadKBps, downloadKBps int64) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}
	if err := c.setLimit(ctx, "/api/v2/transfer/setUploadLimit", uploadKBps); err != nil {
		return fmt.Errorf("upload limit: %w", err)
	}
	if err := c.setLimit(ctx, "/api/v2/transfer/setDownloadLimit", downloadKBps); err != nil {
		return fmt.Errorf("download limit: %w", err)
	}
	return nil
}

// CurrentLimits reads the limits currently set on the instance, in KB/s.
func (c *Client) CurrentLimits(ctx context.Context) (uploadKBps, downloadKBps int64, err error) {
	if err := c.ensureLogin(ctx); err != nil {
		return 0, 0, err
	}
	up, err := c.getLimit(ctx, "/api/v2/transfer/uploadLimit")
	if err != nil {
		return 0, 0, fmt.Errorf("upload limit: %w", err)
	}
	dl, err := c.getLimit(ctx, "/api/v2/transfer/downloadLimit")
	if err != nil {
		return 0, 0, fmt.Errorf("download limit: %w", err)
	}
	return up, dl, nil
}

func (c *Client) setLimit(ctx context.Context, path string, kbps int64) error {
	_, err := c.postForm(ctx, path, url.Values{
		"limit": {strconv.FormatInt(toWire(kbps), 10)},
	})
	return err
}

func (c *Client) getLimit(ctx context.Context, path string) (int64, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return 0, err
	}
	wire, err := strconv.ParseInt(strings.TrimSpace(body), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected response %q: %w", body, err)
	}
	return fromWire(wire), nil
}

// toWire converts KB/s with -1 sentinel to bytes/s with 0 sentinel.
func toWire(kbps int64) int64 {
	if kbps < 0 {
		return 0
	}
	return kbps * 1024
}

// fromWire converts bytes/s with 0 sentinel to KB/s with -1 sentinel.
func fromWire(bps int64) int64 {
	if bps <= 0 {
		return rules.Unlimited
	}
	return bps / 1024
}

func (c *Client) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}
	if err := c.login(ctx); err != nil {
		return err
	}
	c.loggedIn = true
	return nil
}

func (c *Client) login(ctx context.Context) error {
	form := url.Values{
		"username": {c.username},
		"password": {c.password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base.JoinPath("/api/v2/auth/login").String(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// qBittorrent rejects cross-origin requests without a matching Referer.
	req.Header.Set("Referer", c.base.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to qbittorrent: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "Ok." {
		return fmt.Errorf("%w: status %d", ErrLoginFailed, resp.StatusCode)
	}
	return nil
}

// do runs the request, retrying through a fresh login once when the
// session cookie has expired.
func (c *Client) do(ctx context.Context, req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.log.Warning("qbittorrent session expired, logging in again")
		c.mu.Lock()
		err = c.login(ctx)
		c.loggedIn = err == nil
		c.mu.Unlock()
		if err != nil {
			return "", err
		}
		retry := req.Clone(ctx)
		if req.GetBody != nil {
			if retry.Body, err = req.GetBody(); err != nil {
				return "", err
			}
		}
		if resp, err = c.http.Do(retry); err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("qbittorrent returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath(path).String(), nil)
	if err != nil {
		return "", err
	}
	return c.do(ctx, req)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base.JoinPath(path).String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, req)
}

var _ limiter.SpeedLimiter = (*Client)(nil)
