package base

// FlagVisitor lets a component declare its tunable parameters without
// depending on any particular flag-parsing library, trimmed down to the
// handful of primitive kinds this module's components actually need.
type FlagVisitor interface {
	BoolVar(name, description string, value *bool)
	IntVar(name, description string, value *int)
	Float64Var(name, description string, value *float64)
	StringVar(name, description string, value *string)
}

// Flags is implemented by any component that exposes a tunable parameter set
// in that idiom, so a caller's CLI layer can bind them without either side
// depending on the other.
type Flags interface {
	Visit(fv FlagVisitor)
}
