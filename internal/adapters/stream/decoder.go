// Package stream reads the long lived user stream: TLS setup, the HTTP
// transport and the incremental frame decoder
package stream

import (
	"bytes"

	"meitanbot/internal/core/event"
)

// DefaultMaxFrame bounds how much undelimited data a decoder holds
const DefaultMaxFrame = 1 << 20

var crlf = []byte("\r\n")

// Decoder turns raw chunks into records; frames are delimited by one or more CRLF
// A Decoder is owned by a single connection and is not safe for concurrent use
type Decoder struct {
	buf      []byte
	maxFrame int
	dropped  int
}

// NewDecoder returns a decoder; maxFrame <= 0 selects DefaultMaxFrame
func NewDecoder(maxFrame int) *Decoder {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	return &Decoder{maxFrame: maxFrame}
}

// Feed appends chunk and returns every record completed by it, in wire order
// malformed frames are counted and skipped; keep-alive blank lines are skipped silently
func (d *Decoder) Feed(chunk []byte) []event.Record {
	d.buf = append(d.buf, chunk...)
	var out []event.Record
	for {
		d.skipDelims()
		i := bytes.Index(d.buf, crlf)
		if i < 0 {
			break
		}
		frame := bytes.TrimSpace(d.buf[:i])
		d.buf = d.buf[i:]
		if len(frame) == 0 {
			continue
		}
		rec, err := event.ParseRecord(frame)
		if err != nil {
			d.dropped++
			continue
		}
		out = append(out, rec)
	}
	if len(d.buf) > d.maxFrame {
		d.dropped++
		d.buf = d.buf[:0]
	}
	d.compact()
	return out
}

// Reset discards any partial frame; called when a new connection starts
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
}

// Dropped is the number of frames discarded since the decoder was created
func (d *Decoder) Dropped() int { return d.dropped }

// Buffered is the number of bytes waiting for a delimiter
func (d *Decoder) Buffered() int { return len(d.buf) }

func (d *Decoder) skipDelims() {
	n := 0
	for n < len(d.buf) && (d.buf[n] == '\r' || d.buf[n] == '\n') {
		// a lone trailing CR may be the first half of a delimiter split across chunks
		if d.buf[n] == '\r' && n+1 == len(d.buf) {
			break
		}
		n++
	}
	d.buf = d.buf[n:]
}

// compact moves the unread tail to the front so the backing array does not grow forever
func (d *Decoder) compact() {
	if cap(d.buf) > 4*d.maxFrame && len(d.buf) < d.maxFrame {
		d.buf = append(make([]byte, 0, len(d.buf)), d.buf...)
	}
}
