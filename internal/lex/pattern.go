package lex

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Pattern is a text-match pattern. On the wire it is either a bare string
// (exact match) or an object with any of:
//
//	"="  exact match
//	"*"  prefix match
//	">"  lower bound (inclusive)
//	"<"  upper bound (inclusive)
//
// Exact wins over prefix, prefix over range. A pattern with no field set
// never matches.
type Pattern struct {
	Eq     *string `json:"=,omitempty"`
	Prefix *string `json:"*,omitempty"`
	Gte    *string `json:">,omitempty"`
	Lte    *string `json:"<,omitempty"`
}

// Exact returns a pattern matching s only.
func Exact(s string) *Pattern { return &Pattern{Eq: &s} }

// HasPrefix returns a pattern matching every string that starts with s.
func HasPrefix(s string) *Pattern { return &Pattern{Prefix: &s} }

// Between returns a pattern matching from <= t <= to. An empty bound is
// open.
func Between(from, to string) *Pattern {
	p := &Pattern{}
	if from != "" {
		p.Gte = &from
	}
	if to != "" {
		p.Lte = &to
	}
	return p
}

// IsZero reports whether no field is set.
func (p *Pattern) IsZero() bool {
	return p == nil || (p.Eq == nil && p.Prefix == nil && p.Gte == nil && p.Lte == nil)
}

// Match reports whether t satisfies p. A nil pattern never matches.
func (p *Pattern) Match(t string) bool {
	if p == nil {
		return false
	}
	if p.Eq != nil {
		return t == *p.Eq
	}
	if p.Prefix != nil {
		return strings.HasPrefix(t, *p.Prefix)
	}
	switch {
	case p.Gte != nil && p.Lte != nil:
		return t >= *p.Gte && t <= *p.Lte
	case p.Gte != nil:
		return t >= *p.Gte
	case p.Lte != nil:
		return t <= *p.Lte
	}
	return false
}

// Contains reports whether s occurs in any field of p.
func (p *Pattern) Contains(s string) bool {
	if p == nil {
		return false
	}
	for _, v := range []*string{p.Eq, p.Prefix, p.Gte, p.Lte} {
		if v != nil && strings.Contains(*v, s) {
			return true
		}
	}
	return false
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	if p.Eq != nil && p.Prefix == nil && p.Gte == nil && p.Lte == nil {
		return json.Marshal(*p.Eq)
	}
	type plain Pattern
	return json.Marshal(plain(p))
}

func (p *Pattern) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = Pattern{Eq: &s}
		return nil
	}
	type plain Pattern
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("lex: pattern: %w", err)
	}
	*p = Pattern(out)
	return nil
}

// isPatternObject reports whether every key of m is a pattern operator.
func isPatternObject(m map[string]json.RawMessage) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		switch k {
		case "=", "*", ">", "<":
		default:
			return false
		}
	}
	return true
}
