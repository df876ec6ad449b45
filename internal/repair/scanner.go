// internal/repair/scanner.go
package repair

// scanState tracks where the cursor sits relative to JSON string literals.
type scanState int

const (
	stateOutside scanState = iota
	stateInString
	stateInEscape
)

// stringScanner is the single source of truth for string-literal boundaries.
// Every repair pass shares this state machine, so the passes can never
// disagree about where a string begins or ends. It replaces per-pass
// backslash-parity counting: an escaped quote walks InString -> InEscape ->
// InString and never toggles the literal closed.
type stringScanner struct {
	state scanState
}

// advance consumes one byte and reports whether it belongs to the interior of
// a string literal. The opening quote reports false (it is structural); the
// closing quote reports true, which is harmless since no pass treats a quote
// as a structural brace, comma, or control character.
func (s *stringScanner) advance(c byte) bool {
	switch s.state {
	case stateOutside:
		if c == '"' {
			s.state = stateInString
		}
		return false
	case stateInString:
		switch c {
		case '\\':
			s.state = stateInEscape
		case '"':
			s.state = stateOutside
		}
		return true
	default: // stateInEscape
		s.state = stateInString
		return true
	}
}

// inString reports whether the scanner currently sits inside a string literal.
func (s *stringScanner) inString() bool {
	return s.state != stateOutside
}
