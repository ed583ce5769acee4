package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taxoclass/internal/classify"
	"taxoclass/internal/config"
	"taxoclass/internal/prompt"
	"taxoclass/internal/textutil"
)

type classifyFlags struct {
	instructions string
	mimeType     string
	jsonOutput   bool
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify text, a workbook, an image or an audio/video file",
	}

	classifyCmd.AddCommand(newClassifyModalityCommand(ctx, prompt.ModalityText, "text [file|-]", "Classify free text from a file or stdin"))
	classifyCmd.AddCommand(newClassifyModalityCommand(ctx, prompt.ModalityWorkbook, "workbook [file|-]", "Classify a long-form workbook already extracted to text"))
	classifyCmd.AddCommand(newClassifyModalityCommand(ctx, prompt.ModalityImage, "image <file>", "Classify a single image"))
	classifyCmd.AddCommand(newClassifyModalityCommand(ctx, prompt.ModalityMedia, "media <file>", "Transcribe and classify an audio or video file"))

	return classifyCmd
}

func newClassifyModalityCommand(ctx *commandContext, modality prompt.Modality, use, short string) *cobra.Command {
	var flags classifyFlags

	args := cobra.MaximumNArgs(1)
	if modality == prompt.ModalityImage || modality == prompt.ModalityMedia {
		args = cobra.ExactArgs(1)
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			req, err := buildRequest(cmd, modality, source, flags)
			if err != nil {
				return err
			}

			engine, closer, err := buildEngine(cmd.Context(), cfg, logger, modality == prompt.ModalityMedia)
			if err != nil {
				return err
			}
			defer closer.Close()

			result, err := engine.Classify(cmd.Context(), req)
			if err != nil {
				return err
			}
			return renderResult(cmd, cfg, result, flags.jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&flags.instructions, "instructions", "i", "", "Optional steering instructions appended to the prompt")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Always print JSON, even on a terminal")
	if modality == prompt.ModalityImage || modality == prompt.ModalityMedia {
		cmd.Flags().StringVar(&flags.mimeType, "mime", "", "MIME type override (detected from the file when empty)")
	}
	return cmd
}

func buildRequest(cmd *cobra.Command, modality prompt.Modality, source string, flags classifyFlags) (prompt.Request, error) {
	data, name, err := readSource(cmd.InOrStdin(), source)
	if err != nil {
		return nil, err
	}
	instructions := strings.TrimSpace(flags.instructions)

	switch modality {
	case prompt.ModalityText:
		return prompt.TextRequest{Text: string(data), Instructions: instructions}, nil
	case prompt.ModalityWorkbook:
		return prompt.WorkbookRequest{Text: string(data), Instructions: instructions}, nil
	case prompt.ModalityImage:
		return prompt.ImageRequest{
			Data:         data,
			MIMEType:     detectMIME(flags.mimeType, name, data),
			Instructions: instructions,
		}, nil
	case prompt.ModalityMedia:
		return prompt.MediaRequest{
			Data:         data,
			MIMEType:     detectMIME(flags.mimeType, name, data),
			DisplayName:  strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
			Instructions: instructions,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported modality %q", modality)
	}
}

func readSource(stdin io.Reader, source string) ([]byte, string, error) {
	source = strings.TrimSpace(source)
	if source == "" || source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}
	path, err := config.ExpandPath(source)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("input file is empty: " + path)
	}
	return data, path, nil
}

// detectMIME prefers the explicit override, then the file extension, then
// content sniffing.
func detectMIME(override, name string, data []byte) string {
	if value := strings.TrimSpace(override); value != "" {
		return strings.ToLower(value)
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}
	sniffed := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mediaType
	}
	return sniffed
}

func renderResult(cmd *cobra.Command, cfg *config.Config, result *classify.Result, forceJSON bool) error {
	out := cmd.OutOrStdout()
	if forceJSON || !isTerminal(out) {
		return writeJSON(cmd, result)
	}
	if result == nil {
		floor := cfg.Quality.MinTextChars
		if floor <= 0 {
			floor = classify.DefaultMinTextChars
		}
		fmt.Fprintf(out, "Content is shorter than %d characters; nothing was classified.\n", floor)
		return nil
	}

	rows := [][]string{
		{"Title", result.Title},
		{"Pillar", result.PrimaryPillar},
		{"Secondary", strings.Join(result.SecondaryPillars, ", ")},
		{"Subcomponent", result.Sub},
		{"Competence", result.Competence},
		{"Behavior", result.Behavior},
		{"Maturity", result.MaturityLevel},
		{"Intervention", result.Intervention},
		{"Moment", result.Moment},
		{"Target role", result.TargetRole},
		{"Duration", result.Duration},
		{"Format", result.Format},
		{"Completeness", strconv.Itoa(result.CompletenessScore)},
		{"Model", result.Model},
		{"Attempts", strconv.Itoa(result.Attempts)},
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
	fmt.Fprintln(out)
	fmt.Fprintln(out, textutil.Excerpt(result.Summary, 400))
	fmt.Fprintln(out)
	fmt.Fprintln(out, result.Observations)
	return nil
}
