// Package main hosts the taxoclass CLI entrypoint and command graph.
//
// The Cobra command tree reads content from files or stdin, wires the
// classification engine from configuration, and prints the structured result.
// Supporting commands inspect the taxonomy context a prompt would carry, list
// the candidate model order, and scaffold configuration.
//
// Keep this package lean: the pipeline lives in internal/classify and its
// collaborators; commands here only resolve inputs and render output.
package main
