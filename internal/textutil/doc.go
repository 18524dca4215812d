// Package textutil provides text processing utilities for title similarity,
// release-year parsing, and filename slugs.
//
// The primary use cases are:
//   - Scoring how closely a provider-reported album title matches the query
//     title, using a difflib-style matching-blocks ratio
//   - Extracting a four-digit release year from free-form date strings
//   - Reducing artist, album, and genre names to filesystem-safe slugs
//
// Similarity scoring normalizes both inputs to lowercase alphanumerics before
// comparison, so punctuation and spacing differences never affect the score.
package textutil
