package domain

// Role identifies the author of a conversation turn in the public API
// vocabulary.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one the inbound API accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ProviderRole maps the public role vocabulary onto the generation
// provider's vocabulary. The provider calls the assistant side "model".
func (r Role) ProviderRole() string {
	if r == RoleAssistant {
		return "model"
	}
	return "user"
}

// HistoryEntry is one prior turn of the conversation, oldest first.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationResult is what the generation provider produced for a turn.
// Compliance and Reasoning are only present when the structured output
// contract is active.
type GenerationResult struct {
	Text       string
	Compliance *int
	Reasoning  string
}

// TurnResult is the outcome of one fully processed turn. Nothing in it
// outlives the request/response exchange.
type TurnResult struct {
	Audio      []byte
	UserText   string
	ReplyText  string
	Compliance *int
}
