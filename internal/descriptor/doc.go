// Package descriptor loads a single repository's build declaration file into
// an in-memory Repository value: declared targets, dependency names, header
// search roots, and the glob-expanded source set. Loading is purely functional
// with respect to program state; it only reads the filesystem.
package descriptor
