// Package matcher provides the feature matching engines used to compare
// the start of a new shot against earlier frames.
//
// Engines consume index-aligned feature and descriptor slices for two
// frames and return index correspondences. They are stateless and safe
// for concurrent use.
package matcher
