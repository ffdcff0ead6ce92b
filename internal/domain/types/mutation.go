package types

// Mutation is a single key/value write against a graph node.
//
// Value is the wire form and may be a signed record. After acceptance Plain
// holds the verified, unwrapped value and Writer the key that signed it.
type Mutation struct {
	ID    string  `json:"@,omitempty"`
	Soul  string  `json:"#"`
	Key   string  `json:"."`
	Value any     `json:":"`
	State float64 `json:">"`

	// Cert is the certificate offered by a session writing into another
	// user's graph. It may be a SignedEnvelope or its "SEA" string form.
	Cert any `json:"cert,omitempty"`

	// Faith marks a put from a trusted internal path; it is never set from
	// decoded input.
	Faith bool `json:"-"`

	Plain  any    `json:"=,omitempty"`
	Writer string `json:"writer,omitempty"`
}

// Action is what the firewall decided for a mutation.
type Action int

const (
	Accept Action = iota
	Reject
	Drop
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Drop:
		return "drop"
	}
	return "unknown"
}

// Verdict is the outcome of checking one mutation. On Accept, Put is the
// rewritten mutation to forward; on Reject, Err carries the code and the
// reason reported to the writer.
type Verdict struct {
	Action Action
	Put    Mutation
	Err    error
}
