package cutlist

import (
	"fmt"
	"strings"

	"batchenc/internal/services"
	"batchenc/internal/source"
	"batchenc/internal/textutil"
)

// State is the validation state of a List.
type State int

const (
	Collecting State = iota
	Validating
	Valid
	Rejected
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Validating:
		return "validating"
	case Valid:
		return "valid"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Rule names one cut list invariant.
type Rule string

const (
	RuleArity      Rule = "arity"
	RuleTimeFormat Rule = "time_format"
	RuleNameFormat Rule = "name_format"
	RuleBounds     Rule = "bounds"
	RuleOrder      Rule = "order"
	RuleUnique     Rule = "unique"
	RuleState      Rule = "state"
)

// Violation describes one broken rule. Index is the 0-based cut position,
// or -1 for list-wide problems.
type Violation struct {
	Rule    Rule
	Index   int
	Message string
}

func (v Violation) String() string {
	if v.Index < 0 {
		return fmt.Sprintf("%s: %s", v.Rule, v.Message)
	}
	return fmt.Sprintf("%s: cut %d: %s", v.Rule, v.Index+1, v.Message)
}

// Batch is one submission of parallel lists. Starts and Ends may be empty or
// a single blank entry to mean "defaults for every cut"; AudioFilters may be
// empty to mean no custom filters.
type Batch struct {
	Starts       []string
	Ends         []string
	Names        []string
	AudioFilters []string
}

// ParseBatch builds a Batch from comma separated answers.
func ParseBatch(starts, ends, names string) Batch {
	return Batch{
		Starts: textutil.SplitList(starts, ","),
		Ends:   textutil.SplitList(ends, ","),
		Names:  textutil.SplitList(names, ","),
	}
}

// Result is the outcome of one validation attempt.
type Result struct {
	Source     string
	Cuts       []Cut
	Violations []Violation
}

// Valid reports whether the attempt passed.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Err returns nil for a valid result, otherwise an error tagged
// services.ErrValidation listing every violation.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	parts := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		parts[i] = v.String()
	}
	return services.Wrap(services.ErrValidation, "cutlist", "validate", r.Source+": "+strings.Join(parts, "; "), nil)
}

// List collects and validates the cuts of one source file.
type List struct {
	source   *source.Descriptor
	registry *Registry
	state    State
	cuts     []Cut
}

// New returns a List in the Collecting state.
func New(src *source.Descriptor, registry *Registry) *List {
	if registry == nil {
		registry = NewRegistry()
	}
	return &List{source: src, registry: registry, state: Collecting}
}

// State returns the current validation state.
func (l *List) State() State {
	return l.state
}

// Cuts returns the validated cuts, or nil before a successful validation.
func (l *List) Cuts() []Cut {
	if l.state != Valid {
		return nil
	}
	return append([]Cut(nil), l.cuts...)
}

// Names returns the output names of the validated cuts.
func (l *List) Names() []string {
	cuts := l.Cuts()
	names := make([]string, len(cuts))
	for i, c := range cuts {
		names[i] = c.OutputName
	}
	return names
}

// Validate checks b against every rule. On success the names are committed
// to the registry and the list becomes Valid; on failure nothing is
// committed and the list is Rejected, ready for another submission.
func (l *List) Validate(b Batch) Result {
	result := Result{Source: l.source.Path}
	if l.state == Valid {
		result.Violations = []Violation{{Rule: RuleState, Index: -1, Message: "cut list already validated"}}
		return result
	}
	l.state = Validating

	count := len(b.Names)
	starts := expandDefaults(b.Starts, count)
	ends := expandDefaults(b.Ends, count)
	filters := b.AudioFilters
	if len(filters) == 0 {
		filters = make([]string, count)
	}

	var violations []Violation
	add := func(rule Rule, index int, format string, args ...any) {
		violations = append(violations, Violation{Rule: rule, Index: index, Message: fmt.Sprintf(format, args...)})
	}

	if count == 0 {
		add(RuleArity, -1, "at least one output name is required")
	}
	if len(starts) != count {
		add(RuleArity, -1, "%d start times for %d output names", len(starts), count)
	}
	if len(ends) != count {
		add(RuleArity, -1, "%d end times for %d output names", len(ends), count)
	}
	if len(filters) != count {
		add(RuleArity, -1, "%d audio filters for %d output names", len(filters), count)
	}

	duration := l.source.Duration()
	seen := make(map[string]int, count)
	for i, name := range b.Names {
		if !ValidName(name) {
			add(RuleNameFormat, i, "output name %q must use only letters, digits and hyphens", name)
		} else if prev, dup := seen[name]; dup {
			add(RuleUnique, i, "output name %q repeats cut %d", name, prev+1)
		} else if l.registry.Contains(name) {
			add(RuleUnique, i, "output name %q was already used in this run", name)
		}
		if _, dup := seen[name]; !dup {
			seen[name] = i
		}
	}

	pairs := min(len(starts), len(ends))
	for i := 0; i < pairs; i++ {
		start, startOK := position(starts[i], 0)
		end, endOK := position(ends[i], duration)
		if !startOK {
			add(RuleTimeFormat, i, "start time %q is not HH:MM:SS, MM:SS or seconds", starts[i])
		}
		if !endOK {
			add(RuleTimeFormat, i, "end time %q is not HH:MM:SS, MM:SS or seconds", ends[i])
		}
		if !startOK || !endOK {
			continue
		}
		if start > duration || end > duration {
			add(RuleBounds, i, "position beyond source duration %.3fs", duration)
		}
		if start >= end {
			add(RuleOrder, i, "start %s is not before end %s", displayTime(starts[i], "start"), displayTime(ends[i], "end"))
		}
	}

	if len(violations) > 0 {
		l.state = Rejected
		l.cuts = nil
		result.Violations = violations
		return result
	}

	cuts := make([]Cut, count)
	for i := range cuts {
		cuts[i] = Cut{
			Source:      l.source,
			Start:       starts[i],
			End:         ends[i],
			OutputName:  b.Names[i],
			AudioFilter: strings.TrimSpace(filters[i]),
		}
	}
	l.registry.commit(b.Names)
	l.cuts = cuts
	l.state = Valid
	result.Cuts = append([]Cut(nil), cuts...)
	return result
}

func expandDefaults(values []string, count int) []string {
	if len(values) == 0 || (len(values) == 1 && values[0] == "" && count > 1) {
		return make([]string, count)
	}
	return values
}

// position converts value to seconds, substituting fallback for blanks.
func position(value string, fallback float64) (float64, bool) {
	if value == "" {
		return fallback, true
	}
	s, err := Seconds(value)
	return s, err == nil
}

func displayTime(value, which string) string {
	if value != "" {
		return value
	}
	if which == "start" {
		return "(file start)"
	}
	return "(file end)"
}
