package llm

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartread/smartread/internal/config"
)

func TestNewHTTPClientUsesConfiguredProxy(t *testing.T) {
	var proxiedHost string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxiedHost = r.Host
		io.WriteString(w, "via proxy")
	}))
	defer proxy.Close()

	cfg := config.DefaultLLMConfig()
	cfg.ProxyURL = proxy.URL

	resp, err := NewHTTPClient(&cfg).Get("http://api.example.invalid/v1/models")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "via proxy" {
		t.Errorf("body = %q", body)
	}
	if proxiedHost != "api.example.invalid" {
		t.Errorf("proxied host = %q", proxiedHost)
	}
}

func TestNewHTTPClientHonoursNoProxy(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request for %s should not reach the proxy", r.Host)
	}))
	defer proxy.Close()

	cfg := config.DefaultLLMConfig()
	cfg.ProxyURL = proxy.URL
	cfg.NoProxy = "api.example.invalid"

	resp, err := NewHTTPClient(&cfg).Get("http://api.example.invalid/v1/models")
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected direct dial to an invalid host to fail")
	}
}
