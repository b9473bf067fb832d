// Package repository holds the authoritative in-memory people collection and
// keeps the durable store in sync with it.
//
// A Repository moves through uninitialized → loading → ready. Queries made
// before it is ready return empty results; mutations return ErrNotReady.
//
// Every mutation replaces the collection with a new value (the old slices are
// never written to) and signals a single writer goroutine. The writer always
// saves the collection as it is when the save starts, so saves are serialized
// and an older snapshot can never overwrite a newer one. Save failures are
// logged and reported but do not roll back the in-memory change.
//
// Looking up a person or idea that does not exist is not an error: deletes and
// AddIdea silently do nothing in that case.
package repository
