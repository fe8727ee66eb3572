// Package upstream is the shared fetch-and-decompress core: one outbound GET
// with browser-like headers, Content-Encoding decoding and optional per-domain
// rules, used by every proxy endpoint.
package upstream

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout   = 15 * time.Second

	textAccept  = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	imageAccept = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"
)

// Options configures a Client. The zero value is usable: default user agent,
// no timeout, no allowlist, no rules.
type Options struct {
	UserAgent string
	// Timeout bounds a whole request; zero disables it.
	Timeout time.Duration
	// AllowedDomains restricts target hosts by prefix. Empty means any host.
	AllowedDomains []string
	Rules          RuleSet
	LogURLs        bool
	Logger         *log.Logger
}

// OptionsFromEnv reads USER_AGENT, HTTP_TIMEOUT (seconds), ALLOWED_DOMAINS
// (comma separated), ALLOWED_DOMAINS_RULESET and LOG_URLS.
func OptionsFromEnv(rules RuleSet) (Options, error) {
	opts := Options{
		UserAgent: getenv("USER_AGENT", DefaultUserAgent),
		Timeout:   DefaultTimeout,
		Rules:     rules,
		LogURLs:   os.Getenv("LOG_URLS") == "true",
	}

	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			return Options{}, errors.Errorf("HTTP_TIMEOUT must be a non-negative number of seconds, got %q", raw)
		}
		opts.Timeout = time.Duration(secs) * time.Second
	}

	for _, d := range strings.Split(os.Getenv("ALLOWED_DOMAINS"), ",") {
		if d = strings.TrimSpace(d); d != "" {
			opts.AllowedDomains = append(opts.AllowedDomains, d)
		}
	}
	if os.Getenv("ALLOWED_DOMAINS_RULESET") == "true" {
		opts.AllowedDomains = append(opts.AllowedDomains, rules.Domains()...)
	}

	return opts, nil
}

// Request describes one outbound call. Method defaults to GET. Binary
// requests skip Accept-Encoding negotiation and body rules, so the bytes come
// back exactly as the upstream sent them.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Binary bool
}

// Response is the decoded result of a fetch. It is owned by the caller.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) Text() string {
	return string(r.Body)
}

// ContentType returns the upstream Content-Type or fallback when absent.
func (r *Response) ContentType(fallback string) string {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return fallback
}

type Client struct {
	http *http.Client
	opts Options
	log  *log.Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if err := opts.Rules.compile(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// Encoding is negotiated and decoded here, never by the transport.
	transport.DisableCompression = true

	return &Client{
		http: &http.Client{Transport: transport, Timeout: opts.Timeout},
		opts: opts,
		log:  opts.Logger,
	}, nil
}

// Fetch performs the request and returns the decoded response. A non-2xx
// status yields both the response and a *StatusError.
func (c *Client) Fetch(ctx context.Context, r Request) (*Response, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidURL, "%q: %v", r.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Wrapf(ErrInvalidURL, "%q", r.URL)
	}
	if len(c.opts.AllowedDomains) > 0 && !hasPrefix(u.Hostname(), c.opts.AllowedDomains) {
		return nil, errors.Wrapf(ErrDomainNotAllowed, "%s", u.Hostname())
	}

	if c.opts.LogURLs {
		c.log.Info("fetch", "url", u.String())
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	rule := c.opts.Rules.Match(u.Hostname(), u.Path)
	c.setHeaders(req, r, rule)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", u.String())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read body of %s", u.String())
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}
	if !r.Binary {
		decoded, err := Decode(resp.Header.Get("Content-Encoding"), raw)
		if err != nil {
			return nil, err
		}
		if rule.rewritesBody() {
			decoded = []byte(rewrite(string(decoded), rule, c.log))
		}
		out.Body = decoded
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{StatusCode: resp.StatusCode, URL: u.String()}
	}
	c.log.Debug("fetched", "url", u.String(), "status", resp.StatusCode, "bytes", len(out.Body))
	return out, nil
}

func (c *Client) setHeaders(req *http.Request, r Request, rule Rule) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if r.Binary {
		req.Header.Set("Accept", imageAccept)
	} else {
		req.Header.Set("Accept", textAccept)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
	}

	for key, values := range r.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	applyRuleHeader(req.Header, "User-Agent", rule.Headers.UserAgent)
	applyRuleHeader(req.Header, "X-Forwarded-For", rule.Headers.XForwardedFor)
	applyRuleHeader(req.Header, "Referer", rule.Headers.Referer)
	applyRuleHeader(req.Header, "Cookie", rule.Headers.Cookie)
}

func applyRuleHeader(h http.Header, key, value string) {
	switch value {
	case "":
	case "none":
		h.Del(key)
		if key == "User-Agent" {
			// net/http sends its own agent unless the key is present and empty.
			h.Set(key, "")
		}
	default:
		h.Set(key, value)
	}
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
