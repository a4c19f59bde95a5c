package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// RequestWatcher measures outgoing SDK requests. The method label is taken
// from the "alias" request header, which is stripped before sending.
type RequestWatcher struct {
	name string
	next http.RoundTripper
}

func NewRequestWatcher(name string) *RequestWatcher {
	return &RequestWatcher{
		name: name,
		next: http.DefaultTransport,
	}
}

// NewHTTPClient returns a client whose requests are collected under the name.
func NewHTTPClient(name string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewRequestWatcher(name),
		Timeout:   timeout,
	}
}

func (m *RequestWatcher) RoundTrip(r *http.Request) (*http.Response, error) {
	alias := r.Header.Get("alias")
	r = r.Clone(r.Context())
	r.Header.Del("alias")

	var err error
	defer func(start time.Time) {
		CollectRequestsMetric(m.name, alias, err, start)
	}(time.Now())

	resp, err := m.next.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	if data, ok := resp.Header["Ratelimit-Remaining"]; ok && len(data) > 0 {
		if val, err := strconv.ParseFloat(data[0], 64); err == nil {
			CollectKeyState(m.name, "remaining_value", val)
		}
	}

	if data, ok := resp.Header["X-Ratelimit-Remaining-Requests"]; ok && len(data) > 0 {
		if val, err := strconv.ParseFloat(data[0], 64); err == nil {
			CollectKeyState(m.name, "remaining_requests", val)
		}
	}

	return resp, nil
}
