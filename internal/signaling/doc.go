// Package signaling brokers call setup between two peers. It tracks which
// connection is in which room, admits at most two participants per room,
// and relays negotiation payloads to the other participant. Media never
// passes through it.
package signaling
