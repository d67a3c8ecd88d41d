package draw

import "strings"

// framing pulls a JSON candidate out of one stream line.
type framing struct {
	name    string
	extract func(line string) (string, bool)
}

func prefixed(prefix string) func(string) (string, bool) {
	return func(line string) (string, bool) {
		rest, ok := strings.CutPrefix(line, prefix)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(rest), true
	}
}

// framings are tried in order; the first match wins. "data:" covers SSE with
// or without the space after the colon.
var framings = []framing{
	{name: "sse", extract: prefixed("data:")},
	{name: "message-tab", extract: prefixed("message\t")},
	{name: "message-space", extract: prefixed("message ")},
	{name: "json", extract: func(line string) (string, bool) {
		trimmed := strings.TrimSpace(line)
		return trimmed, strings.HasPrefix(trimmed, "{")
	}},
}

// lineDecode is the result of decoding one line.
type lineDecode struct {
	event   *Event
	framing string
	err     error
}

// decodeLine extracts and decodes the event carried by line. A line without a
// recognized framing, or whose framed payload is empty, yields a nil event and
// a nil error. When the framed payload does not decode, the whole trimmed line
// is tried before giving up.
func decodeLine(line string) lineDecode {
	head := strings.TrimLeft(line, " \t")
	for _, f := range framings {
		candidate, ok := f.extract(head)
		if !ok {
			continue
		}
		if candidate == "" {
			return lineDecode{framing: f.name}
		}
		ev, err := decodeEvent([]byte(candidate))
		if err == nil {
			return lineDecode{event: ev, framing: f.name}
		}
		if whole := strings.TrimSpace(line); whole != candidate {
			if ev, wholeErr := decodeEvent([]byte(whole)); wholeErr == nil {
				return lineDecode{event: ev, framing: "raw"}
			}
		}
		return lineDecode{framing: f.name, err: err}
	}
	return lineDecode{}
}
