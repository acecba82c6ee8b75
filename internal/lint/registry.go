package lint

// Registry is an ordered, read-only list of rules. Order determines the order
// of diagnostics and therefore the order in which remediations run.
type Registry struct {
	rules []Rule
}

// NewRegistry creates a registry holding rules in the given order.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{rules: make([]Rule, len(rules))}
	copy(r.rules, rules)
	return r
}

// DefaultRegistry returns the full rule catalogue.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&TableStructureRule{},
		&LogicalBlocksRule{},
		&SemanticBlocksRule{},
		&HeadingsRule{},
		&NavUsageRule{},
		&FigureCaptionRule{},
		SummaryPresence(),
		BlockquotePresence(),
		CitePresence(),
		TimePresence(),
		AddressPresence(),
		&AbbrTitleRule{},
		QPresence(),
		MarkPresence(),
		DelInsPresence(),
	)
}

// Rules returns a copy of the registered rules.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Names returns the rule names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name())
	}
	return names
}
