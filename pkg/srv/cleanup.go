package srv

import "context"

// cleanup wraps a close function as a Service so resource teardown joins the
// ordinary shutdown sequence.
type cleanup struct {
	fn func() error
}

func NewCleanup(fn func() error) Service {
	return &cleanup{fn: fn}
}

func (c *cleanup) Start(ctx context.Context) error {
	return nil
}

func (c *cleanup) Shutdown(ctx context.Context) error {
	if c.fn == nil {
		return nil
	}
	return c.fn()
}
