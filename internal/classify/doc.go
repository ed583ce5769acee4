// Package classify drives generative backends to produce a taxonomy-grounded
// classification Result.
//
// The Engine is the entry point. It short-circuits ineligible text, turns
// media into a transcript, composes the prompt from the taxonomy and exemplar
// snapshots, and hands it to the Invoker. The Invoker walks the configured
// candidates in order: each one is called once, its output parsed against the
// Result schema and passed through the quality Gate. The first accepted
// result wins; when every candidate fails, ExhaustedError carries the last
// failure and the full attempt history.
//
// Taxonomy names in a result are not checked against the live tree. The
// prompt instructs the model to reuse them literally and callers own any
// further verification.
package classify
