package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrSinkClosed is returned when writing to or closing a closed sink.
var ErrSinkClosed = errors.New("codec: sink closed")

// Sink is the byte destination encoders write to. Close must be called
// exactly once, whatever the outcome of the encode.
type Sink interface {
	io.Writer
	Close() error
}

// FileSink writes to a file through a buffer. Close flushes, syncs and
// closes the file.
type FileSink struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	closed bool
}

// OpenFileSink creates (or truncates) the file at path.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("codec: open %q: %w", path, err)
	}
	return &FileSink{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Path returns the path the sink was opened with.
func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrSinkClosed
	}
	return s.w.Write(p)
}

// Close flushes buffered data and closes the file. The file is closed even
// when flushing fails.
func (s *FileSink) Close() (err error) {
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	defer func() {
		if closeErr := s.f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("codec: close %q: %w", s.path, closeErr)
		}
	}()

	if err = s.w.Flush(); err != nil {
		return fmt.Errorf("codec: flush %q: %w", s.path, err)
	}
	if err = s.f.Sync(); err != nil {
		return fmt.Errorf("codec: sync %q: %w", s.path, err)
	}
	return nil
}

// MemSink collects encoded bytes in memory.
type MemSink struct {
	buf    bytes.Buffer
	closed bool
}

// NewMemSink returns an empty memory sink.
func NewMemSink() *MemSink {
	return &MemSink{}
}

func (s *MemSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrSinkClosed
	}
	return s.buf.Write(p)
}

// Close marks the sink closed; Bytes stays valid.
func (s *MemSink) Close() error {
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	return nil
}

// Bytes returns everything written so far.
func (s *MemSink) Bytes() []byte {
	return s.buf.Bytes()
}

// WriterSink adapts an io.Writer. Closing it does not close the writer.
type WriterSink struct {
	w      io.Writer
	closed bool
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrSinkClosed
	}
	return s.w.Write(p)
}

// Close marks the sink closed.
func (s *WriterSink) Close() error {
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true
	return nil
}
