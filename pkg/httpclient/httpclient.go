// Package httpclient builds the HTTP client used to download dependency
// sources.
package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// UserAgent is sent with every request that does not set its own.
const UserAgent = "inpack"

// DefaultTimeout bounds one whole request including the body transfer.
const DefaultTimeout = 5 * time.Minute

// TokenEnv names the variable holding a GitHub token. Release tarballs of
// the ZeroMQ projects are served from GitHub, where anonymous downloads are
// rate limited.
const TokenEnv = "GITHUB_TOKEN"

var githubDomains = []string{"github.com", "githubusercontent.com"}

// New returns a client whose transport decorates every request, including
// the ones issued while following redirects.
func New() *http.Client {
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: &transport{Base: http.DefaultTransport},
	}
}

type transport struct {
	Base http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	decorate(req)
	return t.Base.RoundTrip(req)
}

// NewRequest returns a decorated GET request bound to ctx.
func NewRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	decorate(req)
	return req, nil
}

// decorate fills in the user agent and, for GitHub hosts, the bearer
// token. Headers already present are kept.
func decorate(req *http.Request) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	if req.Header.Get("Authorization") != "" || !isGitHubHost(req.URL) {
		return
	}
	if token := os.Getenv(TokenEnv); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func isGitHubHost(u *url.URL) bool {
	host := u.Hostname()
	for _, domain := range githubDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
