// Package stream decodes the newline-delimited JSON events cursor-agent emits
// with --output-format stream-json into progress events.
package stream

import "github.com/tidwall/gjson"

// Event type discriminators on the wire.
const (
	TypeSystem    = "system"
	TypeAssistant = "assistant"
	TypeToolCall  = "tool_call"
	TypeResult    = "result"
)

// Subtypes used by system and tool_call events.
const (
	SubtypeInit      = "init"
	SubtypeStarted   = "started"
	SubtypeCompleted = "completed"
)

// Kind tags a decoded progress Event.
type Kind int

const (
	KindInit Kind = iota
	KindTextDelta
	KindToolStarted
	KindToolCompleted
	KindFinal
)

func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindTextDelta:
		return "text_delta"
	case KindToolStarted:
		return "tool_started"
	case KindToolCompleted:
		return "tool_completed"
	case KindFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Total is the progress ceiling reported with every event.
const Total = 100

// Event is one progress notification derived from a stream line.
type Event struct {
	Kind     Kind
	Progress int
	Total    int
	Message  string
}

// toolCall is the subset of a tool_call payload the decoder reports on.
// cursor-agent nests the call under a key naming its kind, for example
// {"tool_call":{"readToolCall":{"args":{"path":"a.go"},"result":{...}}}}.
type toolCall struct {
	kind         string
	path         string
	success      bool
	linesRead    int64
	linesWritten int64
	bytesWritten int64
}

const (
	readToolCall  = "readToolCall"
	writeToolCall = "writeToolCall"
)

func parseToolCall(line gjson.Result) toolCall {
	var tc toolCall
	line.Get("tool_call").ForEach(func(key, value gjson.Result) bool {
		tc.kind = key.String()
		tc.path = value.Get("args.path").String()
		success := value.Get("result.success")
		if !success.Exists() {
			return false
		}
		tc.success = true
		switch tc.kind {
		case readToolCall:
			tc.linesRead = success.Get("totalLines").Int()
		case writeToolCall:
			tc.linesWritten = success.Get("linesCreated").Int()
			tc.bytesWritten = success.Get("fileSize").Int()
		}
		return false
	})
	return tc
}

// assistantText concatenates the text parts of one assistant event.
func assistantText(line gjson.Result) string {
	var text string
	line.Get("message.content").ForEach(func(_, part gjson.Result) bool {
		if t := part.Get("text"); t.Exists() {
			text += t.String()
		}
		return true
	})
	return text
}
