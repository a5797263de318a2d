package chatstream

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// State is the push-back state of a Decoder
type State int

// States
const (
	// StateIdle means Next returns complete lines as they are available
	StateIdle State = iota
	// StateAwaitingMoreData means a line was pushed back and Next returns nothing until the next Feed
	StateAwaitingMoreData
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingMoreData:
		return "awaiting-more-data"
	}
	return "unknown"
}

// Decoder turns a stream of byte chunks into protocol lines.
// A multi-byte rune split across chunks is held until the chunk completing it arrives.
// Invalid bytes decode to U+FFFD. A Decoder is not safe for concurrent use.
type Decoder struct {
	dec     transform.Transformer
	pending []byte
	buf     string
	state   State
	retries int
	closed  bool
}

// NewDecoder returns a Decoder for one stream
func NewDecoder() *Decoder {
	return &Decoder{dec: unicode.UTF8.NewDecoder()}
}

// Feed appends chunk to the buffer and returns the Decoder to StateIdle
func (d *Decoder) Feed(chunk []byte) {
	if d.closed {
		return
	}

	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
	}
	d.pending = nil

	text, rest := d.decode(src)
	d.buf += text
	if len(rest) > 0 {
		d.pending = append([]byte(nil), rest...)
	}
	d.state = StateIdle
}

// decode transforms as much of src as forms complete runes and returns the unconsumed tail
func (d *Decoder) decode(src []byte) (string, []byte) {
	if len(src) == 0 {
		return "", nil
	}

	var b strings.Builder
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	for {
		nDst, nSrc, err := d.dec.Transform(dst, src, false)
		b.Write(dst[:nDst])
		src = src[nSrc:]

		switch err {
		case nil:
			return b.String(), nil
		case transform.ErrShortSrc:
			return b.String(), src
		case transform.ErrShortDst:
			if nSrc == 0 && nDst == 0 {
				dst = make([]byte, 2*len(dst))
			}
		default:
			// the UTF-8 decoder only reports short buffers; anything else drops the tail
			return b.String(), nil
		}
	}
}

// Next returns the next complete line with its terminator and any trailing carriage return removed.
// It returns false when no complete line is buffered or while the Decoder awaits more data.
func (d *Decoder) Next() (string, bool) {
	if d.closed || d.state == StateAwaitingMoreData {
		return "", false
	}

	i := strings.IndexByte(d.buf, '\n')
	if i < 0 {
		return "", false
	}

	line := d.buf[:i]
	d.buf = d.buf[i+1:]

	return strings.TrimSuffix(line, "\r"), true
}

// Unread pushes line back to the front of the buffer and enters StateAwaitingMoreData.
// There is no bound on how many times a line may be pushed back; Retries counts them.
func (d *Decoder) Unread(line string) {
	if d.closed {
		return
	}
	d.buf = line + "\n" + d.buf
	d.state = StateAwaitingMoreData
	d.retries++
}

// Close discards buffered text and pending partial runes. Further calls are no-ops.
func (d *Decoder) Close() {
	d.closed = true
	d.pending = nil
	d.buf = ""
	d.state = StateIdle
}

// State returns the current push-back state
func (d *Decoder) State() State {
	return d.state
}

// Retries returns the number of lines pushed back so far
func (d *Decoder) Retries() int {
	return d.retries
}

// Buffered returns the decoded text not yet returned by Next
func (d *Decoder) Buffered() string {
	return d.buf
}
