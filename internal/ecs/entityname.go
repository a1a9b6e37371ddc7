package ecs

import "golang.org/x/text/unicode/norm"

// EntityName is the built-in component carrying an entity's human name
// (spec §6.2). It is a resizable character buffer in the original; here
// that's just a Go string, normalized to NFC so two different Unicode
// representations of the same visible name compare equal in
// Registry.FindByName.
type EntityName struct {
	value string
}

// NewEntityName builds an EntityName, normalizing name to NFC.
func NewEntityName(name string) EntityName {
	return EntityName{value: norm.NFC.String(name)}
}

// String returns the normalized name.
func (n EntityName) String() string { return n.value }

// Drop releases the name's storage (spec §6.2 "droppable"). A Go string
// has no explicit release step; this exists so EntityName satisfies
// Droppable and pools holding it go through the same drop path as any
// other droppable component, per spec §4.D.
func (n *EntityName) Drop() { n.value = "" }
