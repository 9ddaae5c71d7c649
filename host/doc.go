/*
Package host runs the CDM log operations the way a contract execution
environment does: it supplies the caller to each call, serializes calls,
persists the state between calls and commits every call atomically.

State is kept in a neo-go key-value store under a single key. Each call
loads the state, applies the operation to a private copy and writes the
result through a cached store view that is persisted only when the call
succeeds, so a failed call never changes the underlying store.
*/
package host
