package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Certificants lists the keys a certificate grants rights to. All means
// anyone ("*").
type Certificants struct {
	All  bool
	Keys []string
}

// Includes reports whether pub is granted.
func (c Certificants) Includes(pub string) bool {
	if c.All {
		return true
	}
	for _, k := range c.Keys {
		if k == pub {
			return true
		}
	}
	return false
}

// IsZero reports whether nobody is granted.
func (c Certificants) IsZero() bool { return !c.All && len(c.Keys) == 0 }

func (c Certificants) MarshalJSON() ([]byte, error) {
	switch {
	case c.All:
		return json.Marshal("*")
	case len(c.Keys) == 1:
		return json.Marshal(c.Keys[0])
	}
	return json.Marshal(c.Keys)
}

func (c *Certificants) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		switch one {
		case "":
			*c = Certificants{}
		case "*":
			*c = Certificants{All: true}
		default:
			*c = Certificants{Keys: []string{one}}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("certificants: %w", err)
	}
	out := Certificants{}
	for _, k := range many {
		if strings.TrimSpace(k) == "*" {
			return c.UnmarshalJSON([]byte(`"*"`))
		}
		out.Keys = append(out.Keys, k)
	}
	*c = out
	return nil
}

// CertificateBody is the signed content of a certificate.
//
// R and W hold the read and write policies as LEX rule JSON. RB and WB
// reference block lists: a soul string, a {"#": soul} link, or a
// key under the issuer's own node that links to the list.
type CertificateBody struct {
	C  Certificants    `json:"c"`
	E  *float64        `json:"e,omitempty"`
	R  json.RawMessage `json:"r,omitempty"`
	W  json.RawMessage `json:"w,omitempty"`
	RB any             `json:"rb,omitempty"`
	WB any             `json:"wb,omitempty"`
}

// Certificate is a SignedEnvelope whose M is a CertificateBody.
type Certificate = SignedEnvelope
