package facts

// RespondState is the tri-state outcome of $respond directives.
type RespondState int

const (
	// RespondUnset means no $respond directive fired; the caller's
	// default policy applies (typically respond only when mentioned).
	RespondUnset RespondState = iota

	// RespondYes means the last firing directive was $respond.
	RespondYes

	// RespondNo means the last firing directive was $respond false.
	RespondNo
)

// String returns the decision name used in logs and metrics labels.
func (s RespondState) String() string {
	switch s {
	case RespondYes:
		return "respond"
	case RespondNo:
		return "suppress"
	}
	return "unset"
}

// Entity is an owned object (character, location, item) whose behavior
// is defined by its fact list. The engine only ever receives a snapshot;
// persistence belongs to the storage collaborator.
type Entity struct {
	ID      string
	Name    string
	OwnerID string
	Facts   []string

	// Defaults are stored permission defaults merged beneath parsed
	// directives (parsed directives win). Optional.
	Defaults *Defaults
}

// Defaults are stored permission defaults for an entity, applied only
// where the fact set carries no corresponding directive.
type Defaults struct {
	Edit      *List
	View      *List
	Use       *List
	Blacklist []Entry
}

// Result is the outcome of one fact evaluation. It is produced once per
// call, owned by the caller, and never mutated afterward.
type Result struct {
	// Facts are the surviving plain facts in original declaration
	// order, macros expanded, including facts gated by a now-true $if.
	Facts []string

	// ShouldRespond is the tri-state response decision. When RetryMs is
	// positive it is always RespondUnset: retry takes precedence and
	// the decision is deferred to the retry leg.
	ShouldRespond RespondState

	// RetryMs schedules re-evaluation after this many milliseconds.
	// Zero means no retry was requested.
	RetryMs int

	// Config facts.
	AvatarURL     string
	StreamMode    string
	MemoryScope   string
	ContextExpr   string
	Freeform      bool
	ModelSpec     string
	StripPatterns []string

	// Permissions is the permission state derived from the fact set
	// merged with stored defaults (parsed directives win). Derived
	// fresh on every evaluation, never persisted.
	Permissions *Permissions

	// Errors are the isolated per-directive failures encountered during
	// evaluation. A failed conditional is treated as not-triggered and
	// evaluation continues; the errors are surfaced here for owner
	// notification and preview tooling.
	Errors []error
}

// Decision returns the label recorded in logs, metrics, and the
// decision store: "retry", "respond", "suppress", or "unset".
func (r *Result) Decision() string {
	if r.RetryMs > 0 {
		return "retry"
	}
	return r.ShouldRespond.String()
}

// Classified is the outcome of directive classification without any
// expression evaluation.
type Classified struct {
	// Plain are the top-level plain facts in declaration order.
	Plain []string

	// Conditionals are the $if directives with their unparsed
	// expression and body text.
	Conditionals []Conditional

	// Permissions are the parsed permission directives, without stored
	// defaults merged in.
	Permissions *Permissions
}

// Conditional is a parsed-but-unevaluated $if directive.
type Conditional struct {
	// Expr is the condition's expression source.
	Expr string

	// Body is the gated fact text or directive.
	Body string

	// Index is the fact's position in the original list.
	Index int
}
