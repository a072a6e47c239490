package testsupport

import "sync"

// recorder tracks method calls and injected failures for the fake repositories.
type recorder struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]error
}

// track records a call to method and returns the failure injected for it, if any.
// The caller must hold mu.
func (r *recorder) track(method string) error {
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[method]++
	return r.failures[method]
}

// Calls returns how many times method was invoked.
func (r *recorder) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// ResetCalls zeroes every call counter.
func (r *recorder) ResetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = make(map[string]int)
}

// FailOn makes every later call to method return err. A nil err removes the failure.
func (r *recorder) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, method)
		return
	}
	if r.failures == nil {
		r.failures = make(map[string]error)
	}
	r.failures[method] = err
}
