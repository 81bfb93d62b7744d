// Package device holds the single mutable session record of the sink.
//
// The record is owned by the dispatch loop: every handler runs to completion
// on that one goroutine, so DeviceState carries no locks. It contains:
//   - The current lifecycle State (changed only through the state manager)
//   - Read-only feature flags copied from configuration
//   - Session flags, each set and cleared by one owner event pair
//   - The pending pairing confirmation and its paired flag
//   - HFP link bookkeeping for the primary and secondary AG
package device
