/*
Package stream bridges callback-driven backend registrations into ordered,
cancellable sequences of result envelopes.

A Source registers one live listener and pushes envelopes into a Sink. A Stream
wraps a Source and is cold: nothing is registered until Subscribe. Each Stream
accepts a single subscriber; re-entering a screen builds a new Stream and with it
a new backend registration.

	s := stream.New[*models.User](source.UserByID(conn, id), stream.WithName("user"))
	sub, err := s.Subscribe(ctx)
	if err != nil {
	    return err
	}
	defer sub.Cancel()

	for {
	    env, err := sub.Next(ctx)
	    if err != nil {
	        break // errors.ErrClosed once cancelled or completed
	    }
	    render(env)
	}

Protocol:
  - Loading is queued synchronously before the source is registered, unless the
    source implements Initialer.
  - Each backend push produces exactly one envelope, delivered in arrival order.
  - A Failure does not end the stream; only Complete or Cancel do.
  - Cancel is idempotent, releases the subscription handle exactly once, and no
    value is returned by Next after it returns.

Emission counts are exported as OpenTelemetry counters under the
"estatesync/stream" scope.
*/
package stream
