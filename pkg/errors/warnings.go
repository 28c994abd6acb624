package errors

import (
	"fmt"
	"sort"
	"sync"
)

// Warning is a non-fatal problem recorded during a run. The affected
// dependency or repository is excluded from the result.
type Warning struct {
	Code    Code   `json:"code"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// String formats the warning for display.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Subject, w.Message)
}

// Warnings is an append-only warning log shared by concurrent workers.
// The zero value is ready to use.
type Warnings struct {
	mu    sync.Mutex
	items []Warning
}

// Add records a warning.
func (w *Warnings) Add(code Code, subject, format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, Warning{
		Code:    code,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// AddErr records err as a warning, deriving the code from the error chain.
// Errors without a code are recorded as fallback.
func (w *Warnings) AddErr(fallback Code, subject string, err error) {
	code := GetCode(err)
	if code == "" {
		code = fallback
	}
	w.Add(code, subject, "%s", UserMessage(err))
}

// Len returns the number of recorded warnings.
func (w *Warnings) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Items returns a copy of the recorded warnings sorted by subject then code,
// so output does not depend on worker scheduling.
func (w *Warnings) Items() []Warning {
	w.mu.Lock()
	out := make([]Warning, len(w.items))
	copy(out, w.items)
	w.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Code < out[j].Code
	})
	return out
}
