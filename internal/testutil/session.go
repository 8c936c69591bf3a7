package testutil

// FixedSessionGenerator returns the same session id every time.
//
// The lifecycle controller stamps its log lines and traces with a session
// id; tests pin it so golden traces stay byte-identical.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator returning id.
// If id is empty, Generate returns "test-session".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
//
// Implements lifecycle.SessionGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
