/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package estatesync keeps application state in step with a remote document
database for a real-estate co-investment app.

Every read is a live stream of result envelopes (Idle, Loading, Success,
Failure). A stream registers with the backend only when subscribed and releases
its registration exactly once when cancelled. Writes are one-shot operations
returning a single terminal envelope.

The layers, bottom up:
  - backend: the push-capable document connection (DynamoDB or in-memory)
  - source: typed sync sources turning pushes into envelopes
  - stream: the cold, single-subscriber stream adapter
  - repository: the Auth, Property, Admin and Settings repositories

Basic Usage:

	conn, err := estatesync.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	client, err := estatesync.New(conn, nil, estatesync.WithLogger(logger))
	if err != nil {
		return err
	}

	sub, err := client.Properties().WatchProperties(nil).Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Cancel()
	env, err := sub.Next(ctx) // Loading
*/
package estatesync
