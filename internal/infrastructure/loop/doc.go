// Package loop provides the cooperative scheduler that drives the session
// engine.
//
// Every connection and session callback runs on one goroutine, so socket
// events, timer expiries and state mutations never overlap. Blocking work
// (dialing, model fetches) runs through Go and posts its result back.
//
// Components:
//   - Scheduler: Post / AfterFunc / Go
//   - Loop: production implementation backed by a task channel
//   - Do: run a function on the loop and wait for it
//
// Timers created by AfterFunc are inert once stopped, even if the expiry
// was already queued.
//
// Example Usage:
//
//	l := loop.New(256)
//	go l.Run(ctx)
//	l.AfterFunc(time.Second, func() { fmt.Println("tick") })
//	err := loop.Do(ctx, l, func() { state = next })
package loop
