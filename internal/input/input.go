// Package input resolves text arguments into content.
//
// A text argument is either the stdin marker "-", the path of an existing
// file, or literal text, checked in that order. System prompts and message
// fragments are resolved the same way.
package input

import (
	"fmt"
	"io"
	"os"
	"strings"

	apierrors "github.com/diogo/helper/internal/errors"
)

// StdinMarker selects standard input as the source of a text argument
const StdinMarker = "-"

// FragmentSeparator joins assembled message fragments
const FragmentSeparator = "\n"

// Resolver resolves text arguments. Standard input is consumed at most once;
// a second "-" resolves to the empty string. Passing "-" more than once is the
// caller's responsibility.
type Resolver struct {
	stdin     io.Reader
	readFile  func(name string) ([]byte, error)
	stdinRead bool
}

// Option configures a Resolver
type Option func(*Resolver)

// WithStdin sets the reader used for the stdin marker
func WithStdin(r io.Reader) Option {
	return func(res *Resolver) {
		res.stdin = r
	}
}

// NewResolver creates a Resolver reading files from the OS and stdin from os.Stdin
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		stdin:    os.Stdin,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the content named by arg
func (r *Resolver) Resolve(arg string) (string, error) {
	if arg == StdinMarker {
		return r.readStdin()
	}

	if isRegularFile(arg) {
		data, err := r.readFile(arg)
		if err != nil {
			return "", apierrors.NewIOError("read file", arg, err)
		}
		return string(data), nil
	}

	return arg, nil
}

// Assemble resolves each fragment in order and joins them with a newline
func (r *Resolver) Assemble(fragments []string) (string, error) {
	if len(fragments) == 0 {
		return "", apierrors.NewConfigErrorWithCause("", apierrors.ErrNoMessage)
	}

	parts := make([]string, 0, len(fragments))
	for i, fragment := range fragments {
		content, err := r.Resolve(fragment)
		if err != nil {
			return "", fmt.Errorf("message fragment %d: %w", i+1, err)
		}
		parts = append(parts, content)
	}

	return strings.Join(parts, FragmentSeparator), nil
}

func (r *Resolver) readStdin() (string, error) {
	if r.stdinRead {
		return "", nil
	}
	r.stdinRead = true

	if r.stdin == nil {
		return "", nil
	}
	data, err := io.ReadAll(r.stdin)
	if err != nil {
		return "", apierrors.NewIOError("read", "stdin", err)
	}
	return string(data), nil
}

// isRegularFile reports whether path names an existing regular file. Any
// stat error, including a name too long to be a path, means literal text.
func isRegularFile(path string) bool {
	if path == "" || strings.ContainsRune(path, '\n') {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
