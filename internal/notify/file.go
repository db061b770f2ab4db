package notify

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File appends each message as one line to a log file. Writes from
// concurrently running monitors are serialized so lines never interleave.
type File struct {
	mu sync.Mutex
	w  io.WriteCloser
}

func NewFile(path string) *File {
	return &File{w: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
	}}
}

func (f *File) Deliver(_ context.Context, message string) error {
	line := strings.TrimRight(message, "\n") + "\n"

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := io.WriteString(f.w, line); err != nil {
		return errors.Wrap(err, "append to transition log")
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w.Close()
}
