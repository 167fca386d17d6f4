// Package arch builds the semantic architecture model from the generic XML
// tree produced by [github.com/archview/archview/pkg/xmltree].
//
// The model follows the VTR architecture dialect: a device section, named
// layout variants, grid-placeable tiles, routing switch and segment lists,
// primitive models, and a recursive complex-block hierarchy of pb_types
// with ports, modes, and symbolic interconnect declarations.
//
// # Pipeline position
//
// Parsing is a strict two-stage pipeline. The lexical stage (xmltree) knows
// nothing about the dialect; this package maps recognized elements onto
// typed structs, preserves unrecognized attributes and elements verbatim in
// ExtraAttrs and Extensions, resolves name-based block references into
// clones so the hierarchy is a true tree, and rejects cycles and dangling
// names. Downstream packages (netgraph, geometry, grid) consume the [Arch]
// value and never look at XML again.
//
// # Errors
//
// Each failure class has its own type so callers can branch on it:
// [SchemaError] for missing or mistyped attributes, [DuplicateNameError]
// for name collisions within a scope, [UnresolvedReferenceError] for
// dangling names, and [CyclicHierarchyError] for self-referential block
// definitions. All carry enough context to report a useful position or
// reference chain.
package arch
