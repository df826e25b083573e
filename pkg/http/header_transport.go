package http

import "net/http"

// headerTransport sets static headers on every outbound request
type headerTransport struct {
	headers   map[string]string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	for key, value := range t.headers {
		if value != "" && reqCopy.Header.Get(key) == "" {
			reqCopy.Header.Set(key, value)
		}
	}

	return t.transport.RoundTrip(reqCopy)
}

func withStaticHeader(key, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			headers:   map[string]string{key: value},
			transport: rt,
		}
	})
}

func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return func(*httpConfig) {}
	}
	return withStaticHeader("Authorization", "Bearer "+token)
}

func WithUserAgent(userAgent string) HttpOpts {
	return withStaticHeader("User-Agent", userAgent)
}
