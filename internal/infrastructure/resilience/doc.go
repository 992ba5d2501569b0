/*
Package resilience provides the failure-handling primitives of the session
client: exponential reconnect backoff and a circuit breaker for model
downloads.

# Backoff

Backoff doubles the delay after every failure, never exceeds its ceiling,
and returns to the base delay once an attempt succeeds:

	b := resilience.NewBackoff(time.Second, 10*time.Second)
	b.Next() // 1s
	b.Next() // 2s
	b.Reset()
	b.Next() // 1s

# Circuit breaker

	breaker := resilience.New("model-fetch", resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	body, err := resilience.Execute(breaker, func() ([]byte, error) {
		return download(ctx, hash)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
