// Package organizer maps resolved covers to their on-disk layout and writes
// the image files, one genre directory per worklist genre.
package organizer
