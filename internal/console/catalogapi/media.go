package catalogapi

import (
	"net/http"
	"net/http/httputil"
)

// Media proxies /uploads/ requests to the backend so image URLs returned by
// the API resolve on the console origin. Console cookies are not forwarded.
func (s *HTTPService) Media() http.Handler {
	target := s.BaseURL()
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Del("Authorization")
		},
	}
}
