/*
Package models defines the domain records synchronized by estatesync: User,
Property and Setting.

Records are decoded from untyped backend documents with lenient decoding: a
missing or mistyped field takes its declared default and decoding never fails.
This keeps a single malformed document from failing a whole collection push.

	u := models.DecodeUser(backend.Document{ID: "u1", Data: map[string]any{
	    "name":    "Ada",
	    "balance": "not-a-number", // falls back to 0
	}})

Records are plain values. Changes produce new values which are written back
with ToDocument.
*/
package models
