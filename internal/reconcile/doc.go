// Package reconcile implements the client-side task collection: it merges
// a REST-fetched snapshot with the stream of push events into one
// consistent local view, tolerating duplicate and out-of-order events.
//
// The store is the authoritative client-local state. Events may arrive
// twice (a client observes its own mutation via both the REST response
// and the broadcast) or reference tasks the client has never seen; every
// applier is therefore idempotent and silently drops unknown references.
package reconcile
