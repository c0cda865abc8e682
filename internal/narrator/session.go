package narrator

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Turn struct {
	Role    string
	Content string
}

// Session is the conversation memory of a single pipeline run. It lives in
// memory only and is discarded with the run.
type Session struct {
	turns []Turn
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Append(role, content string) {
	s.turns = append(s.turns, Turn{Role: role, Content: content})
}

// Recent returns at most limit turns, oldest first.
func (s *Session) Recent(limit int) []Turn {
	if limit <= 0 || len(s.turns) <= limit {
		return append([]Turn(nil), s.turns...)
	}
	return append([]Turn(nil), s.turns[len(s.turns)-limit:]...)
}

func (s *Session) Len() int {
	return len(s.turns)
}
