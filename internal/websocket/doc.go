// Package websocket implements the viewer connection registry using the actor pattern.
//
// A single goroutine owns the set of live connections and processes
// register/unregister/broadcast commands from a channel (no mutexes).
// Each connection gets its own writer goroutine with a buffered send channel,
// so one dead or slow viewer can never stall delivery to the others.
package websocket
