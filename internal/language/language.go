package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// known is the set of languages matched by name. Codes outside this list
// still resolve through BCP 47 parsing.
var known = []xlanguage.Tag{
	xlanguage.English,
	xlanguage.Spanish,
	xlanguage.French,
	xlanguage.German,
	xlanguage.Italian,
	xlanguage.Portuguese,
	xlanguage.Japanese,
	xlanguage.Korean,
	xlanguage.Chinese,
	xlanguage.Russian,
	xlanguage.Arabic,
	xlanguage.Hindi,
	xlanguage.Dutch,
	xlanguage.Polish,
	xlanguage.Swedish,
	xlanguage.Danish,
	xlanguage.Norwegian,
	xlanguage.Finnish,
}

var (
	englishNamer = display.English.Languages()
	byName       map[string]xlanguage.Tag
)

func init() {
	byName = make(map[string]xlanguage.Tag, len(known)*2)
	for _, tag := range known {
		byName[strings.ToLower(englishNamer.Name(tag))] = tag
		byName[strings.ToLower(display.Self.Name(tag))] = tag
	}
}

// Resolve maps a code or a language name to its tag. The second return is
// false when nothing matched.
func Resolve(value string) (xlanguage.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return xlanguage.Und, false
	}
	if tag, ok := byName[strings.ToLower(value)]; ok {
		return tag, true
	}
	tag, err := xlanguage.Parse(value)
	if err != nil || tag == xlanguage.Und {
		return xlanguage.Und, false
	}
	base, _ := tag.Base()
	return xlanguage.Make(base.String()), true
}

// DisplayName returns the English name for a code or name, e.g. "Spanish".
// Returns "Unknown" for empty input, or the uppercased input when nothing matched.
func DisplayName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Unknown"
	}
	tag, ok := Resolve(value)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(value))
	}
	return englishNamer.Name(tag)
}

// NativeName returns the language's name in itself, e.g. "español".
func NativeName(value string) string {
	tag, ok := Resolve(value)
	if !ok {
		return ""
	}
	return display.Self.Name(tag)
}

// ToISO2 returns the two-letter base code, or "" when unresolved.
func ToISO2(value string) string {
	tag, ok := Resolve(value)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
