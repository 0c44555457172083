// Package resolve walks a validated constellation graph and computes, for
// every declared target, its resolved build unit: the flattened, deduplicated,
// topologically ordered link dependencies and the compile units producing its
// objects. Units are constructed fresh each generation run and never mutated
// afterwards; the emitter only reads them.
package resolve
