package prompt

// Role statements open every instruction block.
const (
	roleBase = `You are a senior instructional designer who classifies learning content against a fixed competency taxonomy with four nested levels: Pillar > Subcomponent > Competence > Behavior.`

	roleText     = roleBase + "\nYou will read a text excerpt supplied by the requester."
	roleWorkbook = roleBase + "\nYou will read the full text of a participant workbook; weigh its overall learning intent over individual exercises."
	roleImage    = roleBase + "\nYou will analyze a single attached image such as a slide, poster or infographic."
	roleMedia    = roleBase + "\nYou will read the transcript of an audio or video session. Bracketed passages describe on-screen slides."
)

// Observation subsection labels, in the output language.
var (
	baseSubsections = []string{
		"Análisis de impacto",
		"Vinculación metodológica",
		"Guía para el facilitador",
		"Justificación del comportamiento",
	}
	visualSubsection = "Descripción visual"
)

func subsectionsFor(m Modality) []string {
	out := make([]string, 0, len(baseSubsections)+1)
	if m == ModalityImage {
		out = append(out, visualSubsection)
	}
	return append(out, baseSubsections...)
}
