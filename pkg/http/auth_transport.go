package http

import "net/http"

// providerAuth adds bearer credentials and the optional organization header
type providerAuth struct {
	token        string
	organization string
	next         http.RoundTripper
}

func (t *providerAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" && t.organization == "" {
		return t.next.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	if t.token != "" {
		out.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.organization != "" {
		out.Header.Set("OpenAI-Organization", t.organization)
	}

	return t.next.RoundTrip(out)
}

func WithAuth(token, organization string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &providerAuth{token: token, organization: organization, next: rt}
	})
}
