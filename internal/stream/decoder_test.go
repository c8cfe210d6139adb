package stream

import (
	"errors"
	"strings"
	"testing"
)

func collect(t *testing.T, input string) []Event {
	t.Helper()
	var events []Event
	if err := Decode(strings.NewReader(input), func(ev Event) {
		events = append(events, ev)
	}); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return events
}

func TestDecoder_FullStream(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"system","subtype":"init","model":"gpt-x","session_id":"s1"}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Looking"}]}}`,
		`{"type":"tool_call","subtype":"started","call_id":"c1","tool_call":{"readToolCall":{"args":{"path":"main.go"}}}}`,
		`{"type":"tool_call","subtype":"started","call_id":"c2","tool_call":{"writeToolCall":{"args":{"path":"out.go"}}}}`,
		`{"type":"tool_call","subtype":"completed","call_id":"c1","tool_call":{"readToolCall":{"args":{"path":"main.go"},"result":{"success":{"totalLines":42}}}}}`,
		`{"type":"tool_call","subtype":"completed","call_id":"c2","tool_call":{"writeToolCall":{"args":{"path":"out.go"},"result":{"success":{"linesCreated":7,"fileSize":120}}}}}`,
		`{"type":"tool_call","subtype":"started","call_id":"c3","tool_call":{"grepToolCall":{"args":{"pattern":"x"}}}}`,
		`{"type":"tool_call","subtype":"completed","call_id":"c3","tool_call":{"grepToolCall":{"args":{"pattern":"x"}}}}`,
		`{"type":"result","subtype":"success","duration_ms":1500,"result":"done"}`,
	}, "\n") + "\n"

	events := collect(t, input)

	want := []struct {
		kind Kind
		msg  string
	}{
		{KindInit, "initializing, model=gpt-x"},
		{KindTextDelta, "Looking"},
		{KindToolStarted, "reading main.go"},
		{KindToolStarted, "writing out.go"},
		{KindToolCompleted, "tool #1: read 42 lines"},
		{KindToolCompleted, "tool #2: wrote 7 lines (120 bytes)"},
		{KindToolStarted, "tool #3 started"},
		{KindToolCompleted, "tool #3 completed"},
		{KindFinal, "completed in 1.5s"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, w := range want {
		if events[i].Kind != w.kind || events[i].Message != w.msg {
			t.Errorf("event %d = {%v %q}, want {%v %q}", i, events[i].Kind, events[i].Message, w.kind, w.msg)
		}
		if events[i].Total != Total {
			t.Errorf("event %d total = %d, want %d", i, events[i].Total, Total)
		}
	}
	if events[0].Progress != 0 {
		t.Errorf("init progress = %d, want 0", events[0].Progress)
	}
	if last := events[len(events)-1]; last.Progress != 100 {
		t.Errorf("final progress = %d, want 100", last.Progress)
	}
}

func TestDecoder_DeltasReportedIndependently(t *testing.T) {
	input := `{"type":"assistant","message":{"content":[{"type":"text","text":"Hello"}]}}` + "\n" +
		`{"type":"assistant","message":{"content":[{"type":"text","text":" world"}]}}` + "\n"

	events := collect(t, input)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Message != "Hello" {
		t.Errorf("first delta = %q, want %q", events[0].Message, "Hello")
	}
	if events[1].Message != " world" {
		t.Errorf("second delta = %q, want %q", events[1].Message, " world")
	}
}

func TestDecoder_TextProgressMonotonicAndCapped(t *testing.T) {
	chunk := `{"type":"assistant","message":{"content":[{"type":"text","text":"` + strings.Repeat("x", 400) + `"}]}}` + "\n"
	events := collect(t, strings.Repeat(chunk, 20))

	prev := -1
	for i, ev := range events {
		if ev.Progress < prev {
			t.Fatalf("event %d progress %d went backwards from %d", i, ev.Progress, prev)
		}
		if ev.Progress > 95 {
			t.Fatalf("event %d progress %d exceeds 95", i, ev.Progress)
		}
		prev = ev.Progress
	}
	if events[0].Progress != 15 {
		t.Errorf("first progress = %d, want 15", events[0].Progress)
	}
	if prev != 95 {
		t.Errorf("last progress = %d, want 95", prev)
	}
}

func TestDecoder_SplitChunks(t *testing.T) {
	line := `{"type":"system","subtype":"init","model":"m1"}` + "\n" +
		`{"type":"assistant","message":{"content":[{"type":"text","text":"héllo"}]}}` + "\n"

	var events []Event
	d := NewDecoder(func(ev Event) { events = append(events, ev) })
	for i := 0; i < len(line); i++ {
		if _, err := d.Write([]byte{line[i]}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	d.Flush()

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].Message != "héllo" {
		t.Errorf("delta = %q, want %q", events[1].Message, "héllo")
	}
}

func TestDecoder_SkipsMalformedAndUnknown(t *testing.T) {
	input := strings.Join([]string{
		"not json",
		`{"type":"assistant","message":`,
		`["array"]`,
		`{"type":"user","message":{"content":[{"text":"ignored"}]}}`,
		`{"type":"system","subtype":"status"}`,
		`{"type":"tool_call","subtype":"mystery"}`,
		`{"type":"assistant","message":{"content":[]}}`,
		"",
		`{"type":"system","subtype":"init","model":"m2"}`,
	}, "\n") + "\n"

	events := collect(t, input)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(events), events)
	}
	if events[0].Message != "initializing, model=m2" {
		t.Errorf("message = %q", events[0].Message)
	}
}

func TestDecoder_FlushDecodesPartialLineOnce(t *testing.T) {
	var events []Event
	d := NewDecoder(func(ev Event) { events = append(events, ev) })
	d.Write([]byte(`{"type":"result","duration_ms":20}`))

	if len(events) != 0 {
		t.Fatalf("partial line decoded before flush")
	}
	d.Flush()
	d.Flush()
	if len(events) != 1 {
		t.Fatalf("got %d events after flush, want 1", len(events))
	}
	if events[0].Kind != KindFinal || events[0].Message != "completed in 20ms" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestDecoder_CompletedWithoutStartUsesCurrentCounter(t *testing.T) {
	input := `{"type":"tool_call","subtype":"started","call_id":"a","tool_call":{"shellToolCall":{}}}` + "\n" +
		`{"type":"tool_call","subtype":"completed","call_id":"zzz","tool_call":{"shellToolCall":{}}}` + "\n"

	events := collect(t, input)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].Message != "tool #1 completed" {
		t.Errorf("message = %q, want %q", events[1].Message, "tool #1 completed")
	}
}

func TestDecoder_NilObserver(t *testing.T) {
	d := NewDecoder(nil)
	if _, err := d.Write([]byte(`{"type":"system","subtype":"init","model":"m"}` + "\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	d.Flush()
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestDecode_ReturnsReadError(t *testing.T) {
	if err := Decode(failingReader{}, nil); err == nil || err.Error() != "boom" {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestKindString(t *testing.T) {
	if KindToolCompleted.String() != "tool_completed" {
		t.Errorf("String() = %q", KindToolCompleted.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("String() = %q", Kind(99).String())
	}
}
