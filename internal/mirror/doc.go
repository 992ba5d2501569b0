// Package mirror holds the client's copy of server-owned UI state: the
// loaded model, the component registry and the view stack.
//
// All mutations go through a Mirror and produce a new immutable State;
// readers call Snapshot and may keep the result for as long as they like.
// Mutations are total: unknown component ids are ignored, never errors.
package mirror
