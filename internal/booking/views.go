package booking

// Severity classifies a status message for rendering.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

// Selector placeholders, shown when the slot list has no selectable
// options (or above them, for PlaceholderSelectTime).
const (
	PlaceholderSelectDate  = "Select a date first"
	PlaceholderChecking    = "Checking availability..."
	PlaceholderUnable      = "Unable to load slots"
	PlaceholderNoSlots     = "No slots available"
	PlaceholderSelectTime  = "Select a time"
	PlaceholderServerError = "Server error"
)

// SlotView renders the slot selector. Options carry 12-hour labels
// used as both display text and selection value.
type SlotView interface {
	SetPlaceholder(text string)
	SetOptions(placeholder string, options []string)
}

// StatusView renders the transient status message. Each call replaces
// the previous message.
type StatusView interface {
	SetStatus(text string, severity Severity)
}

// Alerter delivers a synchronous user notification, outside the status
// line. May be nil.
type Alerter interface {
	Alert(text string)
}
