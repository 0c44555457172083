// Package ninja serializes resolved build units into a ninja build file: a
// syntax writer covering the subset of the format the generator needs
// (variables, rules, build edges, defaults), and an emitter that renders the
// whole description and writes it atomically. Emission performs no further
// validation; by the time it runs the graph is known good.
package ninja
