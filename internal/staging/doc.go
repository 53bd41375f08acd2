// Package staging manages the per-run scratch directories that artifacts are
// rendered into before being committed to the output directory.
package staging
