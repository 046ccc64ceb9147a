// Package ir provides the in-memory document tree shared by every reader
// and writer of the transcoder.
//
// # Overview
//
// A document decoded from YAML, XML, TOML or JSON is represented as a tree
// of *Node values. Objects keep their keys in source order in parallel
// Fields and Values slices, so ordering survives every conversion without
// relying on map iteration.
//
// # Node Structure
//
// A Node represents a single value. Nodes can be:
//
//   - Atomic types: null, boolean, number, string, timestamp
//   - Composite types: object (key-value pairs), array (ordered list)
//   - References: alias, naming an anchor defined earlier in the document
//
// Presentation details which JSON cannot carry are first class node
// fields: Tag (a local tag such as "!vault"), Style (quoting, block scalar
// or flow collection) and Anchor. The annotate package multiplexes them
// into sentinel keys when a tree crosses a JSON boundary.
//
// Each node maintains parent-child relationships, allowing navigation
// through the tree structure and precise error locations via Path.
package ir
