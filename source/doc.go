// Package source turns declarative layer options into a live tile provider.
//
// A TileSource validates its options, derives a tile grid from the configured
// projection and zoom bounds, and resolves the layer's URL template. Init
// builds the grid and the live provider; Deinit releases both. Setters may be
// called at any time: the resolved URL is pushed to the live provider whenever
// it changes. A TileSource is meant to be driven from a single goroutine.
package source
