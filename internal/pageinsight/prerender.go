package pageinsight

import "strings"

// DefaultPrerenderEndpoint is a rendering proxy that takes the target,
// without its scheme, appended to the path.
const DefaultPrerenderEndpoint = "https://r.jina.ai/http://"

// PrerenderProxy rewrites page URLs into requests against a third-party
// service that executes JavaScript and returns the resulting HTML.
type PrerenderProxy struct {
	Endpoint string
}

// Rewrite strips the http:// or https:// scheme from target and appends the
// remainder to the proxy endpoint.
func (p PrerenderProxy) Rewrite(target string) string {
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = DefaultPrerenderEndpoint
	}
	return endpoint + stripScheme(target)
}

func stripScheme(u string) string {
	lower := strings.ToLower(u)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			return u[len(scheme):]
		}
	}
	return u
}
