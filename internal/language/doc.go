// Package language resolves the configured output language into the names the
// prompt and the result contract use.
//
// Operators may write a code ("es", "spa") or a name ("Spanish", "español");
// both resolve to the same BCP 47 tag through golang.org/x/text.
package language
