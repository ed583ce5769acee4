package classify

import (
	"encoding/json"
	"strings"
)

// Result is the classification record returned to callers. The JSON fields are
// the model's output contract; Model, Modality and Attempts describe how the
// result was produced.
type Result struct {
	Title             string   `json:"title"`
	Summary           string   `json:"summary"`
	KeyConcepts       []string `json:"keyConcepts"`
	ContentType       string   `json:"contentType"`
	PrimaryPillar     string   `json:"primaryPillar"`
	SecondaryPillars  []string `json:"secondaryPillars"`
	Sub               string   `json:"sub"`
	Competence        string   `json:"competence"`
	Behavior          string   `json:"behavior"`
	MaturityLevel     string   `json:"maturityLevel"`
	TargetRole        string   `json:"targetRole"`
	Duration          string   `json:"duration"`
	Intervention      string   `json:"intervention"`
	Moment            string   `json:"moment"`
	Language          string   `json:"language"`
	Format            string   `json:"format"`
	CompletenessScore int      `json:"completenessScore"`
	Observations      string   `json:"observations"`

	Model    string `json:"model,omitempty"`
	Modality string `json:"modality,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

// Enum domains. Parsing matches case-insensitively and stores these spellings.
var (
	MaturityLevels = []string{"Inicial", "Básico", "Intermedio", "Avanzado"}
	Interventions  = []string{"Taller", "Mentoría", "Autoaprendizaje", "Evaluación"}
	Moments        = []string{"Diagnóstico", "Formación", "Aplicación", "Seguimiento"}
)

func canonical(domain []string, value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, option := range domain {
		if strings.EqualFold(option, value) {
			return option, true
		}
	}
	return "", false
}

type schemaField struct {
	key      string
	kind     string
	required bool
	enum     []string
	note     string
}

// schema is the field table shared by the prompt and the parser.
var schema = []schemaField{
	{key: "title", kind: "string", required: true, note: "short descriptive title"},
	{key: "summary", kind: "string", required: true, note: "2-4 sentence summary"},
	{key: "keyConcepts", kind: "array of strings", required: true, note: "3-8 key concepts"},
	{key: "contentType", kind: "string", required: true, note: "e.g. presentación, guía, video, caso práctico"},
	{key: "primaryPillar", kind: "string", required: true, note: "exact pillar name"},
	{key: "secondaryPillars", kind: "array of strings", note: "other exact pillar names, may be empty"},
	{key: "sub", kind: "string", required: true, note: "exact subcomponent name under primaryPillar"},
	{key: "competence", kind: "string", required: true, note: "exact competence name under sub"},
	{key: "behavior", kind: "string", required: true, note: "exact behavior name under competence"},
	{key: "maturityLevel", kind: "string", required: true, enum: MaturityLevels},
	{key: "targetRole", kind: "string", required: true, note: "audience role"},
	{key: "duration", kind: "string", required: true, note: "estimated duration, e.g. 2 horas"},
	{key: "intervention", kind: "string", required: true, enum: Interventions},
	{key: "moment", kind: "string", required: true, enum: Moments},
	{key: "language", kind: "string"},
	{key: "format", kind: "string", required: true, note: "delivery format, e.g. presencial, virtual, híbrido"},
	{key: "completenessScore", kind: "integer", required: true, note: "0-100"},
	{key: "observations", kind: "string", required: true, note: "1000-2000 characters in labeled subsections"},
}

// OutputSchema renders the field table as the JSON shape the model must return.
func OutputSchema() string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range schema {
		desc := f.kind
		if len(f.enum) > 0 {
			quoted := make([]string, len(f.enum))
			for j, v := range f.enum {
				encoded, _ := json.Marshal(v)
				quoted[j] = string(encoded)
			}
			desc = "one of " + strings.Join(quoted, " | ")
		} else if f.note != "" {
			desc += ", " + f.note
		}
		if !f.required {
			desc += " (optional)"
		}
		b.WriteString("  \"")
		b.WriteString(f.key)
		b.WriteString("\": ")
		b.WriteString(desc)
		if i < len(schema)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}
