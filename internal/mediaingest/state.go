package mediaingest

import (
	"context"
	"errors"
)

// ErrMediaFailed reports that the backend gave up processing an uploaded asset.
var ErrMediaFailed = errors.New("media processing failed")

// State is the backend-side lifecycle of an uploaded asset.
type State int

const (
	StateUploading State = iota
	StateProcessing
	StateActive
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUploading:
		return "uploading"
	case StateProcessing:
		return "processing"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether polling should stop.
func (s State) Terminal() bool {
	return s == StateActive || s == StateFailed
}

// Asset is an uploaded media file as reported by the backend.
type Asset struct {
	Name     string
	URI      string
	MIMEType string
	State    State
}

// Backend is the media service: upload, state query, transcription.
type Backend interface {
	Upload(ctx context.Context, data []byte, mimeType, displayName string) (Asset, error)
	State(ctx context.Context, name string) (State, error)
	Transcribe(ctx context.Context, uri, mimeType string) (string, error)
}

// Releaser is implemented by backends that can delete uploaded assets.
type Releaser interface {
	Release(ctx context.Context, name string) error
}
