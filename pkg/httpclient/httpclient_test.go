package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		token     string
		wantToken string
	}{
		{
			name:      "GitHub release download with token",
			url:       "https://github.com/zeromq/zeromq4-1/releases/download/v4.1.4/zeromq-4.1.4.tar.gz",
			token:     "ghp_testtoken123",
			wantToken: "Bearer ghp_testtoken123",
		},
		{
			name:      "GitHub asset CDN with token",
			url:       "https://objects.githubusercontent.com/zeromq/czmq-3.0.2.tar.gz",
			token:     "ghp_testtoken999",
			wantToken: "Bearer ghp_testtoken999",
		},
		{
			name: "GitHub URL without token",
			url:  "https://github.com/zeromq/czmq/releases/download/v3.0.2/czmq-3.0.2.tar.gz",
		},
		{
			name:  "non-GitHub URL with token",
			url:   "https://download.zeromq.org/zeromq-4.1.4.tar.gz",
			token: "ghp_testtoken789",
		},
		{
			name:  "lookalike host is not GitHub",
			url:   "https://github.com.example.org/file.tar.gz",
			token: "ghp_testtoken789",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GITHUB_TOKEN", tt.token)

			req, err := NewRequest(context.Background(), tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, req.Header.Get("Authorization"))
			assert.Equal(t, UserAgent, req.Header.Get("User-Agent"))
		})
	}
}

func TestTransportSetsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent") + "|" + r.Header.Get("Authorization")))
	}))
	defer server.Close()
	t.Setenv("GITHUB_TOKEN", "ghp_testtoken")

	resp, err := New().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// The test server is not GitHub, so no token is attached.
	assert.Equal(t, UserAgent+"|", string(body))
}

func TestTransportPreservesExistingAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Authorization")))
	}))
	defer server.Close()
	t.Setenv("GITHUB_TOKEN", "env_token")

	req, err := http.NewRequest(http.MethodGet, "https://github.com/test/test", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer existing_token")

	tr := &transport{Base: &redirectTransport{server.URL}}
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Bearer existing_token", string(body))
}

func TestTransportAddsTokenForGitHub(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Authorization")))
	}))
	defer server.Close()
	t.Setenv("GITHUB_TOKEN", "env_token")

	req, err := http.NewRequest(http.MethodGet, "https://github.com/zeromq/czmq", nil)
	require.NoError(t, err)

	tr := &transport{Base: &redirectTransport{server.URL}}
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Bearer env_token", string(body))
}

// redirectTransport sends every request to a test server.
type redirectTransport struct {
	testServerURL string
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	newReq := req.Clone(req.Context())
	newReq.URL.Host = strings.TrimPrefix(t.testServerURL, "http://")
	newReq.URL.Scheme = "http"
	return http.DefaultTransport.RoundTrip(newReq)
}

func TestIsGitHubHost(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/owner/repo", true},
		{"https://api.github.com/repos/owner/repo", true},
		{"https://raw.githubusercontent.com/owner/repo/main/file", true},
		{"http://github.com:443/owner/repo", true},
		{"https://example.com/github.com", false},
		{"https://notgithub.com/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, isGitHubHost(u))
		})
	}
}
