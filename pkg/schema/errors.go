// Package schema converts inbound JSON payloads into validated field sets
// and reports failures as per-field message collections.
package schema

// Validation messages, one vocabulary across all payloads.
const (
	MsgRequired     = "Missing data for required field."
	MsgNotString    = "Not a valid string."
	MsgNotNumber    = "Not a valid number."
	MsgNotDatetime  = "Not a valid datetime."
	MsgNegative     = "Must be greater than or equal to 0."
	maxLengthFormat = "Longer than maximum length %d."
)

// Errors maps a field name to an ordered sequence of messages. An empty
// map means the payload passed validation.
type Errors map[string][]string

// Add appends a message to a field, preserving insertion order within the
// field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Any reports whether any field failed validation.
func (e Errors) Any() bool {
	return len(e) > 0
}
