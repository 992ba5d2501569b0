/*
Package session ties the connection, the protocol and the state mirror
together.

Inbound, the Controller dispatches each decoded message by kind:

	state, add, remove, change  -> mirror registry
	modelHash                   -> background model fetch, then view init
	ping, pong                  -> liveness only

Outbound, view commands either become action frames (component actions)
or view stack changes (window actions).

The connection going up or down only flips the online flag; the registry
survives until the server sends a new state message.
*/
package session
