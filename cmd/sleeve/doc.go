// Command sleeve resolves and downloads album cover art for a CSV worklist,
// organizing the images into per-genre directories.
package main
