// Package graph is the host graph the firewall guards: an in-memory node
// store, a monotonic state clock and the put pipeline that runs every
// mutation through a firewall before it is written.
//
// Values are kept in two forms. The wire form is what was accepted and is
// served to peers, who re-verify it. The plain form is the verified,
// unwrapped value that local readers such as certificate block-list
// lookups see.
package graph
