// Package lex implements the text-match patterns used to scope certificate
// grants to parts of a user's graph.
//
// A Policy is tried rule by rule in list order; the first rule that matches
// decides the grant.
package lex
