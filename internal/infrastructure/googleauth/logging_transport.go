package googleauth

import (
	"log"
	"net/http"
	"time"
)

// loggingTransport wraps an existing http.RoundTripper and logs method, URL
// path, latency and status of outgoing Google API requests. Bodies are never
// logged since they carry mail content and uploaded pages.
type loggingTransport struct {
	base http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log.Printf("[google] -> %s %s%s", req.Method, req.URL.Host, req.URL.Path)

	rt := t.base
	if rt == nil {
		rt = http.DefaultTransport
	}
	resp, err := rt.RoundTrip(req)
	if err != nil {
		log.Printf("[google] <- error: %v (elapsed %v)", err, time.Since(start))
		return resp, err
	}

	log.Printf("[google] <- status: %d (elapsed %v)", resp.StatusCode, time.Since(start))
	return resp, nil
}
