// Package broadcast turns question mutations into wire envelopes and fans
// them out to viewers.
//
// Every mutating operation produces exactly one envelope carrying the
// post-mutation question as re-read from the store. With a single instance
// envelopes go straight to the local connection registry; when a Redis
// transport is configured they travel through Pub/Sub so every instance's
// registry delivers them.
package broadcast
