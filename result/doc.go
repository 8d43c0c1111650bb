/*
Package result defines Envelope, the four-variant value (Idle, Loading, Success,
Failure) emitted by every stream and returned by every write in estatesync.

	env := result.Success(user)
	if u, ok := env.Value(); ok {
	    render(u)
	}

	env = result.Failure[*models.User]("permission denied")
	fmt.Println(env.Message())

A Failure only carries text. Callers render it; they must not branch on it.
*/
package result
