package proto

// LogLinePayload encodes a log line. The payload is the raw UTF-8 text.
func LogLinePayload(line []byte) []byte { return line }

// ConsoleWritePayload encodes bytes for the console terminal, including VT100
// escape sequences.
func ConsoleWritePayload(b []byte) []byte { return b }
