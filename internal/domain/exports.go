package domain

import (
	interfaces "graphseal/internal/domain/interfaces"
	types "graphseal/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Fingerprint       = types.Fingerprint
	KeyID             = types.KeyID
	KeyPair           = types.KeyPair
	SignedEnvelope    = types.SignedEnvelope
	EncryptedEnvelope = types.EncryptedEnvelope
	Certificants      = types.Certificants
	CertificateBody   = types.CertificateBody
	Certificate       = types.Certificate
	Mutation          = types.Mutation
	Action            = types.Action
	Verdict           = types.Verdict
)

// Firewall actions.
const (
	Accept = types.Accept
	Reject = types.Reject
	Drop   = types.Drop
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	GraphReader         = interfaces.GraphReader
	GraphWriter         = interfaces.GraphWriter
	Clock               = interfaces.Clock
	ClockFunc           = interfaces.ClockFunc
	CertificateVerifier = interfaces.CertificateVerifier
	Firewall            = interfaces.Firewall
	KeyStore            = interfaces.KeyStore
	IdentityService     = interfaces.IdentityService
	AccountService      = interfaces.AccountService
	RelayClient         = interfaces.RelayClient
)
