package specsource

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// fakeDoer is a scripted HTTPDoer. Responses are keyed by full request URL;
// anything unscripted gets 200 with an empty JSON array. Every request is
// recorded in order so tests can assert the exact escalation sequence.
type fakeDoer struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	requests  []*http.Request
	bodies    []string
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeDoer() *fakeDoer {
	return &fakeDoer{responses: map[string]fakeResponse{}}
}

func (d *fakeDoer) respond(url string, status int, body string) {
	d.responses[url] = fakeResponse{status: status, body: body}
}

func (d *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests = append(d.requests, req)
	body := ""
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	d.bodies = append(d.bodies, body)

	resp, ok := d.responses[req.URL.String()]
	if !ok {
		resp = fakeResponse{status: http.StatusOK, body: "[]"}
	}
	return &http.Response{
		StatusCode: resp.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(resp.body)),
	}, nil
}

func (d *fakeDoer) urls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	urls := make([]string, len(d.requests))
	for i, req := range d.requests {
		urls[i] = req.URL.String()
	}
	return urls
}
