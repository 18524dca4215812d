// Package fetch provides the HTTP capability the provider adapters build on:
// timeout-bounded GET requests for JSON documents and raw bytes, with bounded
// retries on transient status codes and an explicit response cache.
//
// The cache is an ordinary object handed to the client at construction, keyed
// by URL plus the sorted query string. It is safe for concurrent readers; a
// racing write costs at most a redundant fetch, never corruption.
package fetch
