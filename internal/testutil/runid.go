package testutil

// FixedRunIDGenerator generates the same journal run id every time.
//
// The same scenario recorded with the same FixedRunIDGenerator produces
// byte-identical journal traces.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a new fixed run id generator.
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
//
// Implements journal.IDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
