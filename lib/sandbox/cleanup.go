package sandbox

import (
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// teardown collects descriptors opened on behalf of a single launch — the
// stdio passthrough files, plus the sync-pipe ends when the clone itself
// fails — so Close can release them together. Launch calls Close right
// after the clone attempt; an error return before that point leaves the
// descriptors to process exit.
type teardown struct {
	closers []io.Closer
}

// add registers a closer. Nil closers are ignored so callers can register
// conditionally-opened files without a nil check at every call site.
func (t *teardown) add(c io.Closer) {
	if c == nil {
		return
	}
	t.closers = append(t.closers, c)
}

// Close closes every registered closer concurrently and joins any non-nil
// errors. A Close error on one descriptor never prevents the others from
// being released.
func (t *teardown) Close() error {
	var g errgroup.Group
	errs := make([]error, len(t.closers))
	for i, c := range t.closers {
		i, c := i, c
		g.Go(func() error {
			errs[i] = c.Close()
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
