package sandbox

import (
	"fmt"
	"io"
	"os"
)

// syncPipe is a pipe-as-barrier: no payload ever crosses it, only the EOF
// produced when the writer end is closed. Reading any byte other than EOF
// is a protocol violation.
type syncPipe struct {
	r *os.File
	w *os.File
}

func newSyncPipe() (*syncPipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create pipe: %w", err)
	}
	return &syncPipe{r: r, w: w}, nil
}

// Wait blocks on a one-byte read from the reader end until the writer
// closes its end. Any byte actually read is treated as a violation of the
// ordering barrier contract.
func (p *syncPipe) Wait() error {
	return waitPipeEOF(p.r)
}

// SignalDone closes the writer end, releasing any blocked Wait on the other
// side of the pipe.
func (p *syncPipe) SignalDone() error {
	return closeWriteEnd(p.w)
}

// waitPipeEOF performs the one-byte blocking read that implements the
// EOF-as-signal barrier. It operates on a bare *os.File so the child side
// (which only ever holds one end of each pipe, passed in via ExtraFiles)
// can reuse it without constructing a full syncPipe.
func waitPipeEOF(r *os.File) error {
	buf := make([]byte, 1)
	n, err := r.Read(buf)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sync pipe: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("sync pipe protocol violation: read %d unexpected bytes", n)
	}
	return nil
}

// closeWriteEnd closes a pipe's writer end, producing the EOF the other
// side's waitPipeEOF is blocked on.
func closeWriteEnd(w *os.File) error {
	if err := w.Close(); err != nil {
		return fmt.Errorf("close sync pipe writer: %w", err)
	}
	return nil
}

// CloseReader closes the reader end. Used by whichever side does not read
// from this pipe, so that exactly one side holds each endpoint open after
// clone.
func (p *syncPipe) CloseReader() error {
	if err := p.r.Close(); err != nil {
		return fmt.Errorf("close sync pipe reader: %w", err)
	}
	return nil
}

// CloseWriter closes the writer end without signaling — used by whichever
// side does not write to this pipe.
func (p *syncPipe) CloseWriter() error {
	if err := p.w.Close(); err != nil {
		return fmt.Errorf("close sync pipe writer: %w", err)
	}
	return nil
}
