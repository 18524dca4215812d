// Package worklist reads the album worklist CSV that feeds a run.
package worklist
