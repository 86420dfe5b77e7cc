package domain

// Account is one user's economy record. LastClaim is a YYYY-MM-DD date
// string; empty means the daily reward was never claimed.
type Account struct {
	ID        string
	Balance   int64
	LastClaim string
}

// Participant is one member of a group chat as reported by the transport.
type Participant struct {
	ID           string
	IsAdmin      bool
	IsSuperAdmin bool
}

// ChatContext describes the chat a message arrived in. Supplied by the
// transport, read-only for everything else.
type ChatContext struct {
	ChatID       string
	IsGroup      bool
	Participants []Participant
}
