package bot

import "strings"

// parseCommand tokenizes message text: trim, split on whitespace, first
// token lower-cased as the command name, remaining tokens kept verbatim
// as arguments. Whether the text is a command at all (prefix check) is
// the dispatcher's call, not the parser's.
func parseCommand(text string) (name string, args []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}
