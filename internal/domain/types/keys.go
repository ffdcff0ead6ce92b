package types

// KeyPair holds a signing pair (Pub/Priv) and an encryption pair
// (EPub/EPriv). Public keys are "<x>.<y>" and private keys a single
// scalar, each coordinate or scalar 32 bytes of base64url without padding.
//
// Any half may be empty: derivation from public keys yields a pair with no
// private parts.
type KeyPair struct {
	Pub   string `json:"pub,omitempty"`
	Priv  string `json:"priv,omitempty"`
	EPub  string `json:"epub,omitempty"`
	EPriv string `json:"epriv,omitempty"`
}

// Public returns the pair with its private scalars removed.
func (k KeyPair) Public() KeyPair { return KeyPair{Pub: k.Pub, EPub: k.EPub} }

// CanSign reports whether the pair holds a complete signing pair.
func (k KeyPair) CanSign() bool { return k.Pub != "" && k.Priv != "" }

// CanExchange reports whether the pair holds a complete encryption pair.
func (k KeyPair) CanExchange() bool { return k.EPub != "" && k.EPriv != "" }
