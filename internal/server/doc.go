// Package server implements the HTTP and WebSocket transport for RoomChat.
//
// The Hub owns every connected Client and feeds their join, chat and
// disconnect events one at a time into a relay.Relay, which decides who
// receives what. Configuration, origin checks, routing and metrics live in
// their own files alongside.
package server
