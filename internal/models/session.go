package models

// SessionState is the draft of a booking form a user is filling in,
// keyed by the chat session. Fields hold raw form values; Slots holds
// the 12-hour labels offered for the currently selected date.
type SessionState struct {
	SessionID int64             `json:"session_id"`
	Step      string            `json:"step"`
	Fields    map[string]string `json:"fields"`
	Slots     []string          `json:"slots,omitempty"`
}

func (s *SessionState) GetField(name string) string {
	if s.Fields == nil {
		return ""
	}
	return s.Fields[name]
}

func (s *SessionState) SetField(name, value string) {
	if s.Fields == nil {
		s.Fields = make(map[string]string)
	}
	s.Fields[name] = value
}
