// Package certify issues and checks certificates: signed grants that let
// other keys write into part of an owner's graph.
//
// A certificate names its certificants ("*" or a set of public keys), a
// write policy of LEX rules over "path/key", an optional expiry and an
// optional reference to a block list. The Verifier is the firewall's
// collaborator for delegated writes; block lists are read through a
// domain.GraphReader and never written.
package certify
