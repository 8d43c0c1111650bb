/*
Package backend defines the contract estatesync consumes from the managed
document database.

A Connection offers one push-based operation and four one-shot operations:

	type Connection interface {
	    Subscribe(ctx context.Context, target Target, listener Listener) (Handle, error)
	    FetchOnce(ctx context.Context, target Target) (*Snapshot, error)
	    WriteOnce(ctx context.Context, target Target, doc Document) error
	    UpdateOnce(ctx context.Context, target Target, fields map[string]any) error
	    DeleteOnce(ctx context.Context, target Target) error
	}

Implementations:
  - ddb: DynamoDB single-table store, live updates tailed from DynamoDB Streams
  - memory: in-process push store used by tests and the CLI demo mode

Payloads are untyped (map[string]any); decoding into domain records happens in
the models package.
*/
package backend
