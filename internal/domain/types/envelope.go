package types

// SignedEnvelope is a message and the signature over its digest.
type SignedEnvelope struct {
	M any    `json:"m"`
	S string `json:"s"`
}

// EncryptedEnvelope carries everything needed to decrypt a payload apart
// from the key material.
type EncryptedEnvelope struct {
	CT string `json:"ct"`
	IV string `json:"iv"`
	S  string `json:"s"`
}
