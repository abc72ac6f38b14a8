package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamps written by older tools may lack a zone offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without an offset are
// taken as local time.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// wireMessage is the stored field order of a Message.
type wireMessage struct {
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Sender    Sender          `json:"sender"`
	Message   string          `json:"message"`
	Read      bool            `json:"read"`
}

// MarshalJSON writes the timestamp as RFC 3339, or as it was stored when it
// could not be parsed on load.
func (m Message) MarshalJSON() ([]byte, error) {
	var ts json.RawMessage
	if m.hasRawTimestamp() {
		ts = json.RawMessage(m.rawTimestamp)
	} else {
		data, err := m.Timestamp.MarshalJSON()
		if err != nil {
			return nil, err
		}
		ts = data
	}
	return json.Marshal(wireMessage{
		Timestamp: ts,
		Sender:    m.Sender,
		Message:   m.Message,
		Read:      m.Read,
	})
}

// UnmarshalJSON accepts zone-less timestamps in addition to RFC 3339. A
// missing or unrecognized timestamp leaves Timestamp zero and is kept as
// stored instead of failing the record.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw wireMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{
		Sender:  raw.Sender,
		Message: raw.Message,
		Read:    raw.Read,
	}

	var text string
	if len(raw.Timestamp) > 0 && json.Unmarshal(raw.Timestamp, &text) == nil {
		if ts, err := ParseTimestamp(text); err == nil {
			m.Timestamp = ts
			return nil
		}
	}
	m.rawTimestamp = string(bytes.TrimSpace(raw.Timestamp))
	m.keepRaw = true
	return nil
}

// TimestampText returns the timestamp in its stored text form.
func (m Message) TimestampText() string {
	if !m.hasRawTimestamp() {
		return m.Timestamp.Format(time.RFC3339Nano)
	}
	var text string
	if err := json.Unmarshal([]byte(m.rawTimestamp), &text); err == nil {
		return text
	}
	return m.rawTimestamp
}

// SetTimestampText sets the timestamp from its stored text form. Text that
// does not parse is kept and written back unchanged.
func (m *Message) SetTimestampText(text string) {
	if ts, err := ParseTimestamp(text); err == nil {
		m.Timestamp = ts
		m.rawTimestamp, m.keepRaw = "", false
		return
	}
	quoted, _ := json.Marshal(text)
	m.Timestamp = time.Time{}
	m.rawTimestamp, m.keepRaw = string(quoted), true
}

func (m Message) hasRawTimestamp() bool {
	return m.keepRaw && m.Timestamp.IsZero()
}

// Encode serializes a sequence as an indented JSON array. A nil sequence
// encodes as [].
func Encode(msgs []Message) ([]byte, error) {
	if msgs == nil {
		msgs = []Message{}
	}
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON array of messages. Blank input decodes as empty.
// Only malformed JSON is an error.
func Decode(data []byte) ([]Message, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return msgs, nil
}
