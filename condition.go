package entitydataspace

import "github.com/antiraum/EntityDataSpace/internal/codec"

// TermKind distinguishes the three lexical shapes a Term may take, tagged
// once at construction time so the evaluator never has to re-inspect
// strings to decide whether it is looking at a wildcard, a variable, or a
// constant.
type TermKind int

const (
	// KindConst is a fixed string, matched literally.
	KindConst TermKind = iota
	// KindAny is the wildcard; matches anything without binding.
	KindAny
	// KindVar is a named variable; unifies across the search.
	KindVar
)

// Term is one slot (a key or a value) of a Condition node.
type Term struct {
	Kind TermKind
	// Text holds the constant string for KindConst, or the variable name
	// (without the leading '$') for KindVar. It is unused for KindAny.
	Text string
}

// C builds a constant Term.
func C(value string) Term { return Term{Kind: KindConst, Text: value} }

// Wild is the wildcard Term ("*" in the external concrete syntax).
var Wild = Term{Kind: KindAny}

// Var builds a variable Term ("$name" in the external concrete syntax).
func Var(name string) Term { return Term{Kind: KindVar, Text: name} }

// IsConst, IsAny, IsVar report the Term's kind.
func (t Term) IsConst() bool { return t.Kind == KindConst }
func (t Term) IsAny() bool   { return t.Kind == KindAny }
func (t Term) IsVar() bool   { return t.Kind == KindVar }

// ParseTerm tags a raw external-syntax token ("*", "$name", or a plain
// string) into its Term form. This is the one place string inspection
// happens; everywhere else the evaluator switches on Kind.
func ParseTerm(raw string) Term {
	switch {
	case codec.IsAny(raw):
		return Wild
	case codec.IsVariable(raw):
		return Var(codec.VarName(raw))
	default:
		return C(raw)
	}
}

// ConditionKind distinguishes a Root condition (carries only a value) from
// a Leaf condition (carries a name, a value, and children).
type ConditionKind int

const (
	// Root is the query tree's root: it matches entity ids directly.
	Root ConditionKind = iota
	// Leaf is an interior or terminal condition: it matches an attribute
	// of the entity being tested.
	Leaf
)

// Condition is one node of a query tree. A Root condition carries only
// Value (the entity-id match) and Children. A Leaf condition additionally
// carries Name, matched against an attribute name.
type Condition struct {
	Kind     ConditionKind
	Name     Term // only meaningful when Kind == Leaf
	Value    Term
	Children []*Condition
}

// NewRoot builds a Root condition.
func NewRoot(value Term, children ...*Condition) *Condition {
	return &Condition{Kind: Root, Value: value, Children: children}
}

// NewLeaf builds a Leaf condition.
func NewLeaf(name, value Term, children ...*Condition) *Condition {
	return &Condition{Kind: Leaf, Name: name, Value: value, Children: children}
}

// AttrValueKind distinguishes a literal attribute value from an entity
// reference.
type AttrValueKind int

const (
	// ValueLiteral is a quoted string value (does not refer to an
	// entity).
	ValueLiteral AttrValueKind = iota
	// ValueRef is an unquoted entity-id reference.
	ValueRef
)

// AttrValue is an attribute's value: either a literal string (rendered
// with surrounding quotes in the external syntax) or a reference to
// another entity by id.
type AttrValue struct {
	Kind AttrValueKind
	// Text holds the literal's quoted text (e.g. `"hello"`, quotes
	// included) for ValueLiteral, or the referenced entity id for
	// ValueRef.
	Text string
}

// Literal builds a literal AttrValue. s is the unquoted payload; quotes are
// added so that the stored token satisfies codec.IsLiteral.
func Literal(s string) AttrValue {
	return AttrValue{Kind: ValueLiteral, Text: `"` + s + `"`}
}

// Ref builds a reference AttrValue pointing at entity id.
func Ref(id string) AttrValue {
	return AttrValue{Kind: ValueRef, Text: id}
}

// IsLiteral, IsRef report the AttrValue's kind.
func (v AttrValue) IsLiteral() bool { return v.Kind == ValueLiteral }
func (v AttrValue) IsRef() bool     { return v.Kind == ValueRef }

// raw returns the value's external-syntax token: the quoted literal text,
// or the bare entity id.
func (v AttrValue) raw() string { return v.Text }

// parseAttrValue tags a raw external-syntax value token into its AttrValue
// form using the codec's literal recognizer.
func parseAttrValue(raw string) AttrValue {
	if codec.IsLiteral(raw) {
		return AttrValue{Kind: ValueLiteral, Text: raw}
	}
	return AttrValue{Kind: ValueRef, Text: raw}
}

// AttrPair is a (name, value) attribute pair in its external-syntax form,
// used to build AttrSets for mappings.
type AttrPair struct {
	Name  string
	Value AttrValue
}

// AttrSet is an unordered set of attribute pairs — the key shape of a
// mapping's original and synonym sets.
type AttrSet []AttrPair
