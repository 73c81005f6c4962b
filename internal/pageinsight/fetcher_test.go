package pageinsight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

var errConnectionRefused = errors.New("connection refused")

type fetchCall struct {
	method string
	url    string
}

// fakeFetcher serves canned responses keyed by URL and records every call.
// Unknown URLs fail with errConnectionRefused.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*FetchResult
	errors    map[string]error
	calls     []fetchCall
	// block makes Fetch wait for ctx to end for the listed URLs.
	block map[string]bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]*FetchResult),
		errors:    make(map[string]error),
		block:     make(map[string]bool),
	}
}

func (f *fakeFetcher) serve(url string, status int, body string) *fakeFetcher {
	f.responses[url] = &FetchResult{StatusCode: status, Headers: http.Header{}, Body: body, FinalURL: url}
	return f
}

func (f *fakeFetcher) fail(url string, err error) *fakeFetcher {
	f.errors[url] = err
	return f
}

func (f *fakeFetcher) hang(url string) *fakeFetcher {
	f.block[url] = true
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, method, targetURL string) (*FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{method: method, url: targetURL})
	res, resOK := f.responses[targetURL]
	err := f.errors[targetURL]
	hang := f.block[targetURL]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !resOK {
		return nil, fmt.Errorf("%s %s: %w", method, targetURL, errConnectionRefused)
	}
	copied := *res
	return &copied, nil
}

func (f *fakeFetcher) requested() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fetchCall(nil), f.calls...)
}
