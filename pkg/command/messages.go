package command

// Diagnostic messages. The exact text is what a peer on the serial line
// observes.
const (
	MsgNoCommandFound   = "\nNo command was found\n"
	MsgInvalidOperation = "\nInvalid operation\n"
	MsgBadXML           = "\nBad XML\n"
	MsgCommandFailed    = "\nCommand failed\n"

	MsgNullContent  = "Error: CommandContent pointer is null.\n"
	MsgProcessed    = "Command received and processed.\n"
	MsgFirstCommand = "\nFirst Command: %s\n"
	MsgSecondCmd    = "\nSecond Command: %s\n"
)

var statusMessages = map[Index]string{
	NoCommandFound:   MsgNoCommandFound,
	InvalidOperation: MsgInvalidOperation,
	BadXML:           MsgBadXML,
}

// StatusMessage returns the diagnostic for a failure index. Anything not in
// the catalogue is reported as an invalid operation.
func StatusMessage(idx Index) string {
	if msg, ok := statusMessages[idx]; ok {
		return msg
	}
	return MsgInvalidOperation
}
