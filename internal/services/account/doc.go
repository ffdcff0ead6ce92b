// Package account registers aliases in the graph and logs them back in.
//
// An account is a key pair whose private halves are stored in the owner's
// node, encrypted under a proof of work stretched from the passphrase. The
// alias index "~@<alias>" links to every node registered under that alias.
package account
