// Package firewall decides, per key/value mutation, whether a write may
// enter local graph state.
//
// Souls are classified into five record kinds: the alias index ("~@"),
// alias member lists ("~@alice"), owner graphs ("~<pub>..."),
// content-addressed souls (containing "#") and everything else. Owner
// graph values must carry a signature by the owner, or by a certificant
// holding a certificate the owner issued. When the local session owns the
// graph (or holds a certificate for it) the firewall signs the value on the
// session's behalf before forwarding it.
//
// Every mutation ends in exactly one Verdict: Accept with the rewritten
// mutation, Reject with a coded reason, or Drop for expired data.
package firewall
