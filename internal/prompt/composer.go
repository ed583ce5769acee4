// Package prompt composes the classification instruction block for each
// request variant.
package prompt

import (
	"fmt"
	"strings"

	"taxoclass/internal/language"
	"taxoclass/internal/services"
	"taxoclass/internal/textutil"
)

// Default payload ceilings, in runes.
const (
	DefaultTextMaxChars       = 30000
	DefaultWorkbookMaxChars   = 40000
	DefaultTranscriptMaxChars = 30000
)

// Options configures a Composer.
type Options struct {
	OutputLanguage     string
	TextMaxChars       int
	WorkbookMaxChars   int
	TranscriptMaxChars int
	// OutputSchema is the JSON shape the model must return, rendered as text.
	OutputSchema string
}

// Sections are the per-call inputs that do not come from the request itself.
type Sections struct {
	Taxonomy  string
	Exemplars string
	// Transcript is required for media requests.
	Transcript string
}

// Attachment carries binary content sent next to the text, never inside it.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// Prompt is the composed instruction block plus the payload.
type Prompt struct {
	Modality Modality
	// Instructions holds role, taxonomy, exemplars, steering, rules and schema.
	Instructions string
	// Content is the (possibly truncated) payload text.
	Content    string
	Attachment *Attachment
	// Truncated reports that Content was cut to the variant's ceiling.
	Truncated bool
}

// Text joins instructions and content for backends that take one block.
func (p Prompt) Text() string {
	if p.Content == "" {
		return p.Instructions
	}
	return p.Instructions + "\n" + p.Content
}

// Composer builds prompts. It is immutable and safe for concurrent use.
type Composer struct {
	opts Options
}

// NewComposer applies defaults for unset ceilings.
func NewComposer(opts Options) *Composer {
	if strings.TrimSpace(opts.OutputLanguage) == "" {
		opts.OutputLanguage = "Spanish"
	}
	if opts.TextMaxChars <= 0 {
		opts.TextMaxChars = DefaultTextMaxChars
	}
	if opts.WorkbookMaxChars <= 0 {
		opts.WorkbookMaxChars = DefaultWorkbookMaxChars
	}
	if opts.TranscriptMaxChars <= 0 {
		opts.TranscriptMaxChars = DefaultTranscriptMaxChars
	}
	return &Composer{opts: opts}
}

// Compose renders the prompt for req.
func (c *Composer) Compose(req Request, sections Sections) (Prompt, error) {
	if err := Validate(req); err != nil {
		return Prompt{}, err
	}

	var (
		role       string
		label      string
		payload    string
		ceiling    int
		attachment *Attachment
	)
	switch r := req.(type) {
	case TextRequest:
		role, label, payload, ceiling = roleText, "CONTENT", r.Text, c.opts.TextMaxChars
	case WorkbookRequest:
		role, label, payload, ceiling = roleWorkbook, "WORKBOOK", r.Text, c.opts.WorkbookMaxChars
	case ImageRequest:
		role = roleImage
		attachment = &Attachment{Data: r.Data, MIMEType: r.MIMEType}
	case MediaRequest:
		if strings.TrimSpace(sections.Transcript) == "" {
			return Prompt{}, services.Wrap(services.ErrValidation, "prompt", "compose", "media request has no transcript", nil)
		}
		role, label, payload, ceiling = roleMedia, "TRANSCRIPT", sections.Transcript, c.opts.TranscriptMaxChars
	default:
		return Prompt{}, services.Wrap(services.ErrValidation, "prompt", "compose", fmt.Sprintf("unsupported request %T", req), nil)
	}

	var b strings.Builder
	b.WriteString(role)
	b.WriteString("\n\n")
	b.WriteString(sections.Taxonomy)
	if !strings.HasSuffix(sections.Taxonomy, "\n") {
		b.WriteByte('\n')
	}
	if ex := strings.TrimSpace(sections.Exemplars); ex != "" {
		b.WriteByte('\n')
		b.WriteString(ex)
		b.WriteByte('\n')
	}
	if steering := req.Steering(); steering != "" {
		b.WriteString("\nADDITIONAL INSTRUCTIONS FROM THE REQUESTER:\n")
		b.WriteString(steering)
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	c.writeRules(&b, req.Modality())
	if schema := strings.TrimSpace(c.opts.OutputSchema); schema != "" {
		b.WriteString("\nOUTPUT SCHEMA:\n")
		b.WriteString(schema)
		b.WriteByte('\n')
	}

	out := Prompt{
		Modality:     req.Modality(),
		Instructions: b.String(),
		Attachment:   attachment,
	}
	if attachment != nil {
		out.Content = "The image to classify is attached."
		return out, nil
	}
	truncated := textutil.Truncate(payload, ceiling)
	out.Truncated = len(truncated) < len(payload)
	out.Content = label + ":\n" + truncated
	return out, nil
}

func (c *Composer) writeRules(b *strings.Builder, m Modality) {
	lang := language.DisplayName(c.opts.OutputLanguage)
	native := language.NativeName(c.opts.OutputLanguage)
	langLabel := lang
	if native != "" && !strings.EqualFold(native, lang) {
		langLabel = fmt.Sprintf("%s (%s)", lang, native)
	}
	subsections := subsectionsFor(m)

	b.WriteString("RULES:\n")
	fmt.Fprintf(b, "1. Write every field in %s, whatever the language of the source. Set \"language\" to %q.\n", langLabel, lang)
	b.WriteString("2. Choose exactly one dominant classification. When the content spans several categories, classify by the most dominant topic and list other pillars only in secondaryPillars.\n")
	b.WriteString("3. primaryPillar, secondaryPillars, sub, competence and behavior must copy names from the taxonomy exactly as written, including case and accents. sub must belong to primaryPillar, competence to sub, and behavior to competence.\n")
	fmt.Fprintf(b, "4. observations must be between 1000 and 2000 characters, organized in %d labeled subsections in this order: %s.\n",
		len(subsections), strings.Join(subsections, "; "))
	b.WriteString("5. completenessScore is an integer from 0 to 100 reflecting how complete and usable the content is as learning material.\n")
	b.WriteString("6. Respond with a single JSON object and nothing else.\n")
}
