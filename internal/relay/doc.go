// Package relay implements the room membership state machine and message
// routing for RoomChat.
//
// A Relay owns two pieces of bookkeeping: the Registry, which records the
// room each live connection currently occupies, and the Directory, which
// records the members of every non-empty room. Both are mutated only by the
// Relay's operations (Connect, Join, Route, Disconnect), each of which runs
// under a single lock. Outbound events are handed to a Sender supplied by
// the transport.
package relay
