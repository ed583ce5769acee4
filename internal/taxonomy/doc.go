// Package taxonomy models the four-level classification taxonomy
// (Pillar, Subcomponent, Competence, Behavior) and serializes an active
// snapshot into bounded prompt context.
//
// The package never mutates or persists the tree. Callers obtain a flat node
// list from a Source, assemble it with BuildForest, and hand the Forest to
// Serialize. Node names are carried byte-for-byte because classification
// output must reuse them literally.
package taxonomy
