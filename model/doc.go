// Package model defines the result and sort types shared by the scorer,
// collector, and merge layers.
//
// Document identifiers are segment-local ints in [0, maxDoc); collectors
// translate them to shard-global ids by adding the segment's doc base.
// NoMoreDocs is the exhausted-iterator sentinel.
package model
