// Package source implements the sync sources behind estatesync's streams: by-id
// documents, collections, the settings document, and one-shot operations.
// Payloads are decoded with the lenient decoders from the models package, so
// only transport and permission errors reach a consumer as Failure.
package source
