// Package parallel holds small concurrency helpers shared by the worker pools.
package parallel

import "sync"

// ErrorCollector records the first non-nil error reported by a set of
// goroutines. The zero value is ready to use.
type ErrorCollector struct {
	once sync.Once
	err  error
}

// SetError stores err if it is the first non-nil error seen.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.once.Do(func() { c.err = err })
}

// Err returns the first recorded error, or nil. It must only be read after
// the writers have been joined.
func (c *ErrorCollector) Err() error {
	return c.err
}
