// Package workspace manages temporary staging directories.
//
// A run whose result directory is also its input directory writes into a
// staging workspace first and commits the staged files afterwards, so the
// input is never read after it has started being overwritten.
package workspace
