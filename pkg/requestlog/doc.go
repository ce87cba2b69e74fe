// Package requestlog provides the append-only, in-memory history of every
// inbound request, in arrival order. The log never evicts, removes, or
// reorders entries; reads are point-in-time snapshots.
package requestlog
