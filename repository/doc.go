/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package repository exposes the application's data as live streams and one-shot
writes.

Watch* methods return a cold stream.Stream: nothing is registered with the
backend until the stream is subscribed, and cancelling the subscription
releases the registration. Write methods block until the backend acknowledges
and return exactly one terminal envelope, Success or Failure, never Loading.

	sub, err := client.Properties().WatchProperties(nil).Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Cancel()
	for {
		env, err := sub.Next(ctx)
		if err != nil {
			return err
		}
		if props, ok := env.Value(); ok {
			render(props)
		}
	}

Login and registration authenticate first and then read the profile once. A
missing or unreadable profile fails the whole operation even though the
credentials were accepted.
*/
package repository
