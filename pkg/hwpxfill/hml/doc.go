// Package hml provides a generic element tree for Hancom HWPML parts.
//
// HWPX body parts (Contents/section0.xml and friends) carry formatting
// state in attributes the engine must never invent or drop: paragraph
// and character style references, cell addresses, table sizes. Instead
// of a typed object model, hml parses a part into a plain Node tree
// that preserves every attribute and the original namespace prefixes,
// supports structurally independent deep clones, and serializes back
// to the canonical textual form Hancom viewers accept.
//
// Parsing and serialization round-trip the parts this engine mutates;
// members it never touches are copied through as raw bytes at the
// package layer and never pass through this package at all.
package hml
