/*
Package connection maintains the websocket session to the UI server.

A Connection owns exactly one physical socket at a time and keeps it alive:

  - heartbeat: a ping frame every PingInterval while open
  - idle detection: every inbound frame rearms an IdleTimeout timer; on
    expiry the socket is force-closed unless the Suspender reports the
    host as suspended
  - reconnect: every close (peer, error, write failure, idle, failed dial)
    schedules a new dial after an exponential backoff delay, reset by the
    next successful open

All state lives on a loop.Scheduler. Socket callbacks are posted onto the
scheduler tagged with the epoch of the socket that produced them; a
callback whose epoch is no longer current is dropped, so the close path
runs at most once per socket.

# Usage

	url, _ := connection.SocketURL("https://home.local", connection.DefaultSocketPath)
	conn := connection.New(connection.DefaultOptions(url), sched, dialer, observer, logger).
		WithSuspender(signal).
		WithMetrics(metrics)
	sched.Post(conn.Open)
*/
package connection
