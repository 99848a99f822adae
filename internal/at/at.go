package at

const (
	// Terminal Control
	CRLF = "\r\n"

	// Response Codes
	OK    = "OK"
	ERROR = "ERROR"

	// Structured response prefixes
	PrefixCREG  = "+CREG: "
	PrefixCGACT = "+CGACT: "
	PrefixCOPS  = "+COPS: "
	PrefixCSQ   = "+CSQ: "
)

type ResponseType int

const (
	TypeBlank   ResponseType = iota // empty or bare terminator
	TypeOK                          // success marker
	TypeError                       // error marker
	TypeData                        // anything else: echo or payload
)

// Classify identifies the nature of a response line. Markers are matched
// by prefix, the way the modem is known to report them.
func Classify(line string) ResponseType {
	switch {
	case line == "" || line == CRLF || line == "\r" || line == "\n":
		return TypeBlank
	case len(line) >= len(OK) && line[:len(OK)] == OK:
		return TypeOK
	case len(line) >= len(ERROR) && line[:len(ERROR)] == ERROR:
		return TypeError
	default:
		return TypeData
	}
}

// IsFinal reports whether line ends a command response.
func IsFinal(line string) bool {
	t := Classify(line)
	return t == TypeOK || t == TypeError
}
