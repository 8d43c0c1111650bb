/*
Package registry maps estatesync collections to DynamoDB key templates.

Every collection shares one table. A template map describes where a document
lives and how it is listed:

	registry.RegisterIndexMap("users", map[string]string{
	    "PK":     "USER#{id}",
	    "SK":     "USER#{id}",
	    "GSI1PK": "USER",
	    "GSI1SK": "{id}",
	})

Templates for users, properties, settings and credentials are registered at init.
Expand substitutes the document id; CollectionForKey reverses a PK seen on a
stream record back to its collection and id.

The registry is thread-safe.
*/
package registry
