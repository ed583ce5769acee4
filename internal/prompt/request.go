package prompt

import (
	"strings"

	"taxoclass/internal/services"
)

// Modality names the content kind of a request.
type Modality string

const (
	ModalityText     Modality = "text"
	ModalityWorkbook Modality = "workbook"
	ModalityImage    Modality = "image"
	ModalityMedia    Modality = "media"
)

// ParseModality accepts the CLI spelling of a modality.
func ParseModality(value string) (Modality, bool) {
	switch Modality(strings.ToLower(strings.TrimSpace(value))) {
	case ModalityText:
		return ModalityText, true
	case ModalityWorkbook:
		return ModalityWorkbook, true
	case ModalityImage:
		return ModalityImage, true
	case ModalityMedia:
		return ModalityMedia, true
	default:
		return "", false
	}
}

// Request is one of TextRequest, WorkbookRequest, ImageRequest or MediaRequest.
type Request interface {
	Modality() Modality
	// Steering returns the caller's optional free-text instructions.
	Steering() string
	validate() error
}

// TextRequest classifies a short-to-medium text payload.
type TextRequest struct {
	Text         string
	Instructions string
}

// WorkbookRequest classifies a long-form document that was already extracted to text.
type WorkbookRequest struct {
	Text         string
	Instructions string
}

// ImageRequest classifies a single image sent inline.
type ImageRequest struct {
	Data         []byte
	MIMEType     string
	Instructions string
}

// MediaRequest classifies a long audio or video asset by transcript.
type MediaRequest struct {
	Data         []byte
	MIMEType     string
	DisplayName  string
	Instructions string
}

func (TextRequest) Modality() Modality     { return ModalityText }
func (WorkbookRequest) Modality() Modality { return ModalityWorkbook }
func (ImageRequest) Modality() Modality    { return ModalityImage }
func (MediaRequest) Modality() Modality    { return ModalityMedia }

func (r TextRequest) Steering() string     { return strings.TrimSpace(r.Instructions) }
func (r WorkbookRequest) Steering() string { return strings.TrimSpace(r.Instructions) }
func (r ImageRequest) Steering() string    { return strings.TrimSpace(r.Instructions) }
func (r MediaRequest) Steering() string    { return strings.TrimSpace(r.Instructions) }

func (TextRequest) validate() error     { return nil }
func (WorkbookRequest) validate() error { return nil }

func (r ImageRequest) validate() error {
	if len(r.Data) == 0 {
		return services.Wrap(services.ErrValidation, "prompt", "image request", "image data is empty", nil)
	}
	if !strings.HasPrefix(strings.ToLower(r.MIMEType), "image/") {
		return services.Wrap(services.ErrValidation, "prompt", "image request", "unsupported mime type "+r.MIMEType, nil)
	}
	return nil
}

func (r MediaRequest) validate() error {
	if len(r.Data) == 0 {
		return services.Wrap(services.ErrValidation, "prompt", "media request", "media data is empty", nil)
	}
	mime := strings.ToLower(r.MIMEType)
	if !strings.HasPrefix(mime, "audio/") && !strings.HasPrefix(mime, "video/") {
		return services.Wrap(services.ErrValidation, "prompt", "media request", "unsupported mime type "+r.MIMEType, nil)
	}
	return nil
}

// Validate checks the request-level invariants of a variant.
func Validate(req Request) error {
	if req == nil {
		return services.Wrap(services.ErrValidation, "prompt", "validate", "request is nil", nil)
	}
	return req.validate()
}
