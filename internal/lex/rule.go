package lex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Rule scopes a certificate grant to a soul path and a property key.
//
// Object form: {"#": soul pattern, ".": key pattern, "+": force marker}.
// Bare form: a string or pattern object matched against "path/key".
type Rule struct {
	Soul  *Pattern
	Key   *Pattern
	Force string
	Text  *Pattern
}

// Path returns a rule matching soul path p exactly.
func Path(p string) Rule { return Rule{Soul: Exact(p)} }

// Match reports whether the rule grants (path, key):
//
//	soul and key: soul matches path and key matches key
//	soul only:    soul matches path, or the joined "path/key"
//	key only:     key matches key
//	bare text:    text matches the joined "path/key"
func (r Rule) Match(path, key string) bool {
	joined := key
	if path != "" {
		joined = path + "/" + key
	}
	switch {
	case r.Soul != nil && r.Key != nil:
		return r.Soul.Match(path) && r.Key.Match(key)
	case r.Soul != nil:
		return r.Soul.Match(path) || r.Soul.Match(joined)
	case r.Key != nil:
		return r.Key.Match(key)
	}
	return r.Text.Match(joined)
}

// ForcesCertificant reports whether the certificant's key must appear in
// the path or key of a write granted by this rule.
func (r Rule) ForcesCertificant() bool { return strings.Contains(r.Force, "*") }

// IsZero reports whether the rule carries no pattern.
func (r Rule) IsZero() bool { return r.Soul.IsZero() && r.Key.IsZero() && r.Text.IsZero() }

type ruleObject struct {
	Soul  *Pattern `json:"#,omitempty"`
	Key   *Pattern `json:".,omitempty"`
	Force string   `json:"+,omitempty"`
}

func (r Rule) MarshalJSON() ([]byte, error) {
	if r.Soul == nil && r.Key == nil && r.Force == "" && r.Text != nil {
		return json.Marshal(r.Text)
	}
	return json.Marshal(ruleObject{Soul: r.Soul, Key: r.Key, Force: r.Force})
}

func (r *Rule) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var p Pattern
		if err := p.UnmarshalJSON(b); err != nil {
			return err
		}
		*r = Rule{Text: &p}
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("lex: rule: %w", err)
	}
	if isPatternObject(raw) {
		var p Pattern
		if err := p.UnmarshalJSON(b); err != nil {
			return err
		}
		*r = Rule{Text: &p}
		return nil
	}
	var obj ruleObject
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("lex: rule: %w", err)
	}
	*r = Rule{Soul: obj.Soul, Key: obj.Key, Force: obj.Force}
	return nil
}

// Policy is an ordered list of rules. On the wire a single rule may stand
// alone instead of inside an array.
type Policy []Rule

// Match returns the first rule granting (path, key).
func (p Policy) Match(path, key string) (Rule, bool) {
	for _, r := range p {
		if r.Match(path, key) {
			return r, true
		}
	}
	return Rule{}, false
}

func (p Policy) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]Rule(p))
}

func (p *Policy) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = nil
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var rules []json.RawMessage
		if err := json.Unmarshal(b, &rules); err != nil {
			return fmt.Errorf("lex: policy: %w", err)
		}
		out := make(Policy, 0, len(rules))
		for _, raw := range rules {
			if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				continue
			}
			var r Rule
			if err := r.UnmarshalJSON(raw); err != nil {
				return err
			}
			out = append(out, r)
		}
		*p = out
		return nil
	}
	var r Rule
	if err := r.UnmarshalJSON(b); err != nil {
		return err
	}
	*p = Policy{r}
	return nil
}
