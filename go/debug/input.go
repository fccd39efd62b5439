package debug

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrInterrupt is returned by an Input when the user interrupted the current line.
// The session recreates its input and keeps going.
var ErrInterrupt = errors.New("interrupt")

// Input is a source of command lines. ReadLine returns io.EOF once the source is exhausted.
type Input interface {
	ReadLine() (string, error)
	Close() error
}

type lineInput struct {
	r *bufio.Reader
}

// NewLineInput reads newline separated commands from r, for scripts and network clients.
// Pass the same *bufio.Reader to every input opened on one stream so buffered lines survive a reset.
// Closing the input never closes r.
func NewLineInput(r io.Reader) Input {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &lineInput{r: br}
}

func (l *lineInput) ReadLine() (string, error) {
	line, err := l.r.ReadString('\n')
	// a final line without a newline still counts
	if err == io.EOF && line != "" {
		err = nil
	}
	if err == io.EOF {
		return "", io.EOF
	} else if err != nil {
		return "", errors.Wrap(err, "read failed")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (l *lineInput) Close() error {
	return nil
}
