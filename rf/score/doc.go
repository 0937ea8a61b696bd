// Package score measures how well a prediction matches ground truth and how
// strongly activity co-varies with each stimulus position.
//
// Moments are accumulated in a single pass with Welford's update, so long
// recordings with a large DC offset do not lose precision.
package score
