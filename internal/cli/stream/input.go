package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LineReader yields user input lines. ReadLine returns io.EOF when input
// is exhausted.
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

// NewLineReader returns a readline prompt with history when stdin is a
// terminal, and a plain line scanner otherwise.
func NewLineReader(stdin *os.File, historyDir string) (LineReader, error) {
	if !term.IsTerminal(int(stdin.Fd())) {
		return NewScannerReader(stdin), nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(historyDir, "stream_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

type readlineReader struct {
	rl *readline.Instance
}

func (r *readlineReader) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

// ScannerReader reads newline-delimited input from a pipe or file.
type ScannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader wraps r.
func NewScannerReader(r io.Reader) *ScannerReader {
	return &ScannerReader{scanner: bufio.NewScanner(r)}
}

// ReadLine returns the next line without its terminator.
func (s *ScannerReader) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close is a no-op; the underlying reader belongs to the caller.
func (s *ScannerReader) Close() error {
	return nil
}
