package bridge

import (
	"fmt"
	"strings"
)

// MessageType identifies a message crossing the bridge.
type MessageType string

const (
	// TypeSetContent replaces the surface content.
	TypeSetContent MessageType = "SET_CONTENT"
	// TypeFormat applies a formatting command to the current selection.
	TypeFormat MessageType = "FORMAT"
	// TypeContentChanged reports the full markup after an edit.
	TypeContentChanged MessageType = "CONTENT_CHANGED"
)

// Command is a formatting command understood by the surface.
type Command string

const (
	Bold      Command = "bold"
	Italic    Command = "italic"
	Underline Command = "underline"
)

// Valid reports whether c is a supported command.
func (c Command) Valid() bool {
	switch c {
	case Bold, Italic, Underline:
		return true
	}
	return false
}

// ParseCommand converts s into a Command.
func ParseCommand(s string) (Command, error) {
	c := Command(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
	return c, nil
}

// Message is the unit exchanged with the surface. Its JSON form is the wire
// format: {"type":"SET_CONTENT","content":"..."}, {"type":"FORMAT","command":"bold"}
// or {"type":"CONTENT_CHANGED","content":"..."}.
type Message struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content,omitempty"`
	Command Command     `json:"command,omitempty"`
}

// SetContent builds a SET_CONTENT message.
func SetContent(markup string) Message {
	return Message{Type: TypeSetContent, Content: markup}
}

// Format builds a FORMAT message.
func Format(cmd Command) Message {
	return Message{Type: TypeFormat, Command: cmd}
}

// ContentChanged builds a CONTENT_CHANGED message.
func ContentChanged(markup string) Message {
	return Message{Type: TypeContentChanged, Content: markup}
}

const (
	setContentPrefix = "document.getElementById('editor').innerHTML = `"
	setContentSuffix = "`; true;"
	formatPrefix     = "document.execCommand('"
	formatSuffix     = "', false, null); true;"
)

// Script renders the message as a script for surfaces driven by script
// injection. Only outbound messages have a script form.
func (m Message) Script() (string, error) {
	switch m.Type {
	case TypeSetContent:
		return setContentPrefix + EscapeTemplateLiteral(m.Content) + setContentSuffix, nil
	case TypeFormat:
		if !m.Command.Valid() {
			return "", fmt.Errorf("%w: %q", ErrUnknownCommand, m.Command)
		}
		return formatPrefix + string(m.Command) + formatSuffix, nil
	default:
		return "", fmt.Errorf("no script form for %s", m.Type)
	}
}

// ParseScript interprets a script produced by Message.Script.
func ParseScript(script string) (Message, error) {
	if body, ok := cut(script, setContentPrefix, setContentSuffix); ok {
		content, err := UnescapeTemplateLiteral(body)
		if err != nil {
			return Message{}, err
		}
		return SetContent(content), nil
	}
	if body, ok := cut(script, formatPrefix, formatSuffix); ok {
		cmd, err := ParseCommand(body)
		if err != nil {
			return Message{}, err
		}
		return Format(cmd), nil
	}
	return Message{}, ErrMalformedScript
}

func cut(s, prefix, suffix string) (string, bool) {
	if len(s) < len(prefix)+len(suffix) || !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}
