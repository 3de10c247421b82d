package negotiation

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(contentType)
	}
	return mt
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		dst[k] = append([]string(nil), vv...)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// singleJoiningSlash mirrors net/http/httputil's unexported helper of the
// same name: join an upstream base path and a request path without
// producing a doubled or missing slash at the seam.
func singleJoiningSlash(a, b string) string {
	aSlash := strings.HasSuffix(a, "/")
	bSlash := strings.HasPrefix(b, "/")
	switch {
	case aSlash && bSlash:
		return a + b[1:]
	case !aSlash && !bSlash:
		return a + "/" + b
	default:
		return a + b
	}
}
