package dbutil

// Table enumerates the allowed table names for operations that take a
// table parameter (retention sweeps, stats, vacuum), per spec §4.A ("a
// typed enum for allowed table names ... no string allowlist").
type Table string

const (
	TableSessions       Table = "sessions"
	TableMemoryFacts    Table = "memory_facts"
	TableEntities       Table = "entities"
	TableGoals          Table = "goals"
	TableMilestones     Table = "milestones"
	TableBehaviorEvents Table = "behavior_events"
	TableErrorPatterns  Table = "error_patterns"
	TableInsights       Table = "insights"
	TableObservations   Table = "observations"
	TableDocumentation  Table = "documentation"
	TableToolTraces     Table = "tool_traces"

	TableSymbols          Table = "symbols"
	TableCallEdges        Table = "call_edges"
	TableImports          Table = "imports"
	TableChunks           Table = "chunks"
	TablePendingEmbeddings Table = "pending_embeddings"
	TableFiles            Table = "files"
)

// Valid reports whether t is a recognized table name.
func (t Table) Valid() bool {
	switch t {
	case TableSessions, TableMemoryFacts, TableEntities, TableGoals, TableMilestones,
		TableBehaviorEvents, TableErrorPatterns, TableInsights, TableObservations,
		TableDocumentation, TableToolTraces,
		TableSymbols, TableCallEdges, TableImports, TableChunks, TablePendingEmbeddings, TableFiles:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (t Table) String() string { return string(t) }
