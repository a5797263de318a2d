package chatstream

import (
	"errors"
	"io"
)

const readSize = 4096

// Pipeline drives a Decoder and Classify over one stream, emitting fragments in arrival order
type Pipeline struct {
	dec  *Decoder
	done bool
}

// NewPipeline returns a Pipeline for one stream
func NewPipeline() *Pipeline {
	return &Pipeline{dec: NewDecoder()}
}

// Feed decodes chunk and emits every fragment that is complete.
// It returns true once the completion sentinel has been seen; later chunks are ignored.
func (p *Pipeline) Feed(chunk []byte, emit func(fragment string)) bool {
	if p.done {
		return true
	}

	p.dec.Feed(chunk)

	for {
		line, ok := p.dec.Next()
		if !ok {
			return false
		}

		kind, text := Classify(line)
		switch kind {
		case KindFragment:
			emit(text)
		case KindIncomplete:
			p.dec.Unread(line)
			return false
		case KindDone:
			p.done = true
			p.dec.Close()
			return true
		}
	}
}

// Run reads r until it ends, fails or the completion sentinel is seen.
// Text left in the buffer when r ends is discarded. A clean end of r is not an error.
func (p *Pipeline) Run(r io.Reader, emit func(fragment string)) error {
	buf := make([]byte, readSize)
	for {
		n, err := r.Read(buf)
		if n > 0 && p.Feed(buf[:n], emit) {
			return nil
		}

		if errors.Is(err, io.EOF) {
			p.dec.Close()
			return nil
		}
		if err != nil {
			p.dec.Close()
			return err
		}
	}
}

// Done reports whether the completion sentinel has been seen
func (p *Pipeline) Done() bool {
	return p.done
}

// Retries returns the number of push-backs so far
func (p *Pipeline) Retries() int {
	return p.dec.Retries()
}
