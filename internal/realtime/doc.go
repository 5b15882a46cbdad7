// Package realtime maintains the set of live websocket connections and
// fans task mutation events out to them. Every authenticated connection
// joins a private per-user room so assignment notifications can be
// targeted at one user while task mutations broadcast to everyone.
//
// Delivery is best-effort and at-most-once per currently-connected
// receiver: there is no queuing or replay for disconnected users, and
// delivery failures are never surfaced to the caller that triggered the
// mutation.
package realtime
