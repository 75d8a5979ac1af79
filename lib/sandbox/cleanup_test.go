package sandbox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingCloser struct {
	closed bool
	err    error
}

func (c *countingCloser) Close() error {
	c.closed = true
	return c.err
}

func TestTeardownClosesEveryRegisteredCloser(t *testing.T) {
	a := &countingCloser{}
	b := &countingCloser{}
	var td teardown
	td.add(a)
	td.add(b)
	td.add(nil)

	assert.NoError(t, td.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestTeardownJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &countingCloser{err: boom}
	b := &countingCloser{}
	var td teardown
	td.add(a)
	td.add(b)

	err := td.Close()
	assert.Error(t, err)
	assert.True(t, b.closed, "a failing closer must not prevent others from closing")
}
