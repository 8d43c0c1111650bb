/*
Package errors provides semantic error types for the estatesync library.

Backends and the authentication service return these errors; repositories never
branch on them once an operation has been mapped into a result envelope, because
an envelope only carries the error text.

Common Errors:

	var (
	    ErrNotFound           = errors.New("document not found")
	    ErrInvalidInput       = errors.New("invalid input")
	    ErrInvalidCredentials = errors.New("invalid email or password")
	    ErrProfileMissing     = errors.New("user profile not found")
	    ErrAlreadySubscribed  = errors.New("stream already has a subscriber")
	)

Usage:

	snap, err := conn.FetchOnce(ctx, backend.Doc("users", id))
	if err != nil {
	    if errors.IsNotFound(err) {
	        return nil, fmt.Errorf("user %s does not exist", id)
	    }
	    return nil, err
	}

	err := errors.NewNotFoundError("users", "123")
	err := errors.NewValidationError("email", "invalid format")
*/
package errors
