// Package textutil provides rune-safe text budgeting helpers shared by the
// prompt builders and the CLI.
//
// All lengths are counted in runes, never bytes, so Spanish taxonomy names and
// observations are never cut in the middle of an accented character.
package textutil
