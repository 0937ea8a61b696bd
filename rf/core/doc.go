// Package core holds configuration and numeric helpers shared by the
// receptive-field estimation and encoding packages.
package core
