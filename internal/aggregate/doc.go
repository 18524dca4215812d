// Package aggregate fans a search query out across the enabled providers
// and merges their results into a single ordered, filtered candidate list.
package aggregate
