package llm

import (
	"net/http"
	"net/url"

	"github.com/smartread/smartread/internal/config"
	"golang.org/x/net/http/httpproxy"
)

// NewHTTPClient builds the client shared by provider calls. A configured
// proxy_url wins over the HTTP_PROXY/HTTPS_PROXY/NO_PROXY environment.
// Deadlines come from the request context, so the client has no timeout.
func NewHTTPClient(cfg *config.LLMConfig) *http.Client {
	proxyCfg := httpproxy.FromEnvironment()
	if cfg != nil && cfg.ProxyURL != "" {
		proxyCfg = &httpproxy.Config{
			HTTPProxy:  cfg.ProxyURL,
			HTTPSProxy: cfg.ProxyURL,
			NoProxy:    cfg.NoProxy,
		}
	}
	proxyFunc := proxyCfg.ProxyFunc()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}

	return &http.Client{Transport: transport}
}
