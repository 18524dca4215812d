// Package selection scores candidates against the query and decides whether
// one is a confident enough match to pick without asking anyone.
package selection
