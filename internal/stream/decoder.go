package stream

import (
	"bytes"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Decoder turns raw stdout chunks into Events. Chunks may split lines
// anywhere; an incomplete trailing line is carried over to the next Write.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	observe func(Event)
	buf     []byte

	runes    int
	progress int
	tools    int
	calls    map[string]int
}

// NewDecoder returns a Decoder that delivers events to observe in arrival
// order. A nil observe discards events.
func NewDecoder(observe func(Event)) *Decoder {
	return &Decoder{
		observe: observe,
		buf:     make([]byte, 0, 4096),
		calls:   make(map[string]int),
	}
}

// Write consumes one chunk. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)
	start := 0
	for {
		idx := bytes.IndexByte(d.buf[start:], '\n')
		if idx < 0 {
			break
		}
		d.decodeLine(d.buf[start : start+idx])
		start += idx + 1
	}
	if start > 0 {
		d.buf = d.buf[:copy(d.buf, d.buf[start:])]
	}
	return len(p), nil
}

// Flush decodes any leftover partial line once and discards it.
func (d *Decoder) Flush() {
	if len(d.buf) == 0 {
		return
	}
	line := d.buf
	d.buf = nil
	d.decodeLine(line)
}

func (d *Decoder) decodeLine(raw []byte) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return
	}
	line := gjson.ParseBytes(raw)
	if !line.IsObject() {
		return
	}
	ev, ok := d.interpret(line)
	if !ok {
		return
	}
	if d.observe != nil {
		d.observe(ev)
	}
}

func (d *Decoder) interpret(line gjson.Result) (Event, bool) {
	switch line.Get("type").String() {
	case TypeSystem:
		if line.Get("subtype").String() != SubtypeInit {
			return Event{}, false
		}
		model := line.Get("model").String()
		return d.event(KindInit, "initializing, model="+model), true

	case TypeAssistant:
		text := assistantText(line)
		if text == "" {
			return Event{}, false
		}
		d.runes += utf8.RuneCountInString(text)
		d.advance(min(95, 5+d.runes/40))
		return d.event(KindTextDelta, text), true

	case TypeToolCall:
		switch line.Get("subtype").String() {
		case SubtypeStarted:
			return d.toolStarted(line), true
		case SubtypeCompleted:
			return d.toolCompleted(line), true
		}
		return Event{}, false

	case TypeResult:
		d.progress = Total
		ms := line.Get("duration_ms").Int()
		elapsed := time.Duration(ms) * time.Millisecond
		return Event{Kind: KindFinal, Progress: Total, Total: Total, Message: "completed in " + elapsed.String()}, true
	}
	return Event{}, false
}

func (d *Decoder) toolStarted(line gjson.Result) Event {
	d.tools++
	n := d.tools
	if id := line.Get("call_id").String(); id != "" {
		d.calls[id] = n
	}
	tc := parseToolCall(line)
	var msg string
	switch {
	case tc.kind == readToolCall && tc.path != "":
		msg = "reading " + tc.path
	case tc.kind == writeToolCall && tc.path != "":
		msg = "writing " + tc.path
	default:
		msg = fmt.Sprintf("tool #%d started", n)
	}
	return d.event(KindToolStarted, msg)
}

func (d *Decoder) toolCompleted(line gjson.Result) Event {
	n := d.tools
	if id := line.Get("call_id").String(); id != "" {
		if seen, ok := d.calls[id]; ok {
			n = seen
			delete(d.calls, id)
		}
	}
	tc := parseToolCall(line)
	var msg string
	switch {
	case tc.success && tc.kind == writeToolCall:
		msg = fmt.Sprintf("tool #%d: wrote %d lines (%d bytes)", n, tc.linesWritten, tc.bytesWritten)
	case tc.success && tc.kind == readToolCall:
		msg = fmt.Sprintf("tool #%d: read %d lines", n, tc.linesRead)
	default:
		msg = fmt.Sprintf("tool #%d completed", n)
	}
	return d.event(KindToolCompleted, msg)
}

// advance moves progress forward, never back.
func (d *Decoder) advance(p int) {
	if p > d.progress {
		d.progress = p
	}
}

func (d *Decoder) event(kind Kind, msg string) Event {
	return Event{Kind: kind, Progress: d.progress, Total: Total, Message: msg}
}

// Decode reads newline-delimited events from r until EOF, delivering each to
// observe. Malformed lines are skipped so a partial stream still yields
// useful events. The first non-EOF read error is returned.
func Decode(r io.Reader, observe func(Event)) error {
	d := NewDecoder(observe)
	_, err := io.Copy(d, r)
	d.Flush()
	return err
}
