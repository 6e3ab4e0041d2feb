// Package codec implements the key codec: escaping of user-supplied strings
// so they can be joined with a reserved field separator into composite
// storage keys and multi-valued storage cells without ambiguity.
package codec

import "strings"

const (
	// Sep is the field separator used to join encoded components into a
	// composite key or a multi-valued cell.
	Sep = "///"

	// Invalid is the reserved sentinel that a caller-supplied string may
	// never contain. Encoding replaces Sep with Invalid; a string that
	// already contains Invalid cannot be encoded losslessly and is
	// rejected.
	Invalid = "VeRysTr4nGEsTr1Ngn0b0dYW1lLeVerW4NTt0Use4s1d0RKey"

	// Any is the single-character wildcard recognized by queries and by
	// wildcard-erasing mutations.
	Any = "*"

	// varPrefix marks a query token as a variable reference.
	varPrefix = "$"
)

// ErrContainsInvalid is returned by Encode when the input string
// contains the reserved invalid token.
type ErrContainsInvalid struct {
	Input string
}

func (e *ErrContainsInvalid) Error() string {
	return "input contains reserved invalid token: " + e.Input
}

// Encode replaces every occurrence of Sep in s with Invalid so that s can be
// safely joined with other encoded components using Sep. It fails if s
// already contains Invalid, since that would make the encoding lossy.
func Encode(s string) (string, error) {
	if strings.Contains(s, Invalid) {
		return "", &ErrContainsInvalid{Input: s}
	}
	return strings.ReplaceAll(s, Sep, Invalid), nil
}

// MustEncode is like Encode but panics on error. It is only safe to use on
// strings already known not to contain Invalid (e.g. constants).
func MustEncode(s string) string {
	out, err := Encode(s)
	if err != nil {
		panic(err)
	}
	return out
}

// Decode reverses Encode: every occurrence of Invalid is replaced back with
// Sep. Decode is total over the image of Encode.
func Decode(s string) string {
	return strings.ReplaceAll(s, Invalid, Sep)
}

// Join composes a composite key or multi-valued cell out of already-encoded
// components.
func Join(parts ...string) string {
	return strings.Join(parts, Sep)
}

// Split reverses Join. Because Sep cannot occur inside an encoded component,
// splitting on Sep is unambiguous.
func Split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, Sep)
}

// IsLiteral reports whether v is a quoted literal string value, i.e. begins
// and ends with a double quote.
func IsLiteral(v string) bool {
	return len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`)
}

// IsVariable reports whether v is a query variable token of the form
// "$name".
func IsVariable(v string) bool {
	return strings.HasPrefix(v, varPrefix) && len(v) > len(varPrefix)
}

// VarName returns the variable name suffix of a token recognized by
// IsVariable. The caller must check IsVariable first.
func VarName(v string) string {
	return strings.TrimPrefix(v, varPrefix)
}

// IsAny reports whether v is the wildcard token.
func IsAny(v string) bool {
	return v == Any
}
