package firewall

import (
	"regexp"
	"strings"
)

// Class is the record kind of a soul. The concrete types are AliasRecord,
// AliasMemberRecord, OwnerRecord, ContentAddressedRecord and
// UnsignedRecord.
type Class interface {
	// Name is a short label used in logs and metrics.
	Name() string
	isClass()
}

// AliasRecord is the shared alias index "~@".
type AliasRecord struct{}

// AliasMemberRecord lists the keys that claimed Alias ("~@<alias>").
type AliasMemberRecord struct{ Alias string }

// OwnerRecord is a node inside the graph of Pub.
type OwnerRecord struct{ Pub string }

// ContentAddressedRecord holds values named by their own hash.
type ContentAddressedRecord struct{}

// UnsignedRecord is any other soul.
type UnsignedRecord struct{}

func (AliasRecord) Name() string            { return "alias" }
func (AliasMemberRecord) Name() string      { return "alias-member" }
func (OwnerRecord) Name() string            { return "owner" }
func (ContentAddressedRecord) Name() string { return "hash" }
func (UnsignedRecord) Name() string         { return "any" }

func (AliasRecord) isClass()            {}
func (AliasMemberRecord) isClass()      {}
func (OwnerRecord) isClass()            {}
func (ContentAddressedRecord) isClass() {}
func (UnsignedRecord) isClass()         {}

// Classify returns the record kind of soul.
func Classify(soul string) Class {
	switch {
	case soul == "~@":
		return AliasRecord{}
	case strings.HasPrefix(soul, "~@"):
		return AliasMemberRecord{Alias: soul[2:]}
	}
	if pub, ok := OwnerPub(soul); ok {
		return OwnerRecord{Pub: pub}
	}
	if strings.Contains(soul, "#") {
		return ContentAddressedRecord{}
	}
	return UnsignedRecord{}
}

var pubCut = regexp.MustCompile(`[^\w-]`)

// OwnerPub extracts the public key a soul is rooted at. The key follows the
// first "~" as two base64url coordinates separated by any character outside
// [A-Za-z0-9_-]; it is returned as "<x>.<y>".
func OwnerPub(soul string) (string, bool) {
	parts := strings.Split(soul, "~")
	if len(parts) < 2 || parts[1] == "" || strings.HasPrefix(parts[1], "@") {
		return "", false
	}
	coords := pubCut.Split(parts[1], 3)
	if len(coords) < 2 || coords[0] == "" || coords[1] == "" {
		return "", false
	}
	return coords[0] + "." + coords[1], true
}
