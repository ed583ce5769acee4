package mediaingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"taxoclass/internal/logging"
	"taxoclass/internal/prompt"
	"taxoclass/internal/services"
	"taxoclass/internal/textutil"
)

const (
	// DefaultPollInterval is the fixed wait between state queries.
	DefaultPollInterval = 5 * time.Second
	releaseTimeout      = 30 * time.Second
)

var errStillProcessing = errors.New("asset still processing")

// Options configures an Ingestor.
type Options struct {
	PollInterval time.Duration
	// Release deletes the uploaded asset after the call when the backend supports it.
	Release bool
}

// Ingestor drives one upload-poll-transcribe cycle per call. It holds no
// per-call state and may be shared.
type Ingestor struct {
	backend  Backend
	interval time.Duration
	release  bool
	logger   *slog.Logger
}

// NewIngestor constructs an Ingestor.
func NewIngestor(backend Backend, opts Options, logger *slog.Logger) *Ingestor {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Ingestor{
		backend:  backend,
		interval: interval,
		release:  opts.Release,
		logger:   logging.NewComponentLogger(logger, "mediaingest"),
	}
}

// Transcript uploads req's bytes, waits for the asset to become active and
// returns its transcript.
func (i *Ingestor) Transcript(ctx context.Context, req prompt.MediaRequest) (string, error) {
	if i == nil || i.backend == nil {
		return "", services.Wrap(services.ErrConfiguration, "mediaingest", "transcript", "media backend not configured", nil)
	}
	if err := prompt.Validate(req); err != nil {
		return "", err
	}
	logger := logging.WithContext(ctx, i.logger)

	displayName := textutil.SanitizeToken(req.DisplayName)
	started := time.Now()
	asset, err := i.backend.Upload(ctx, req.Data, req.MIMEType, displayName)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "mediaingest", "upload", "upload failed", err)
	}
	logger.Info("media uploaded",
		logging.String("asset", asset.Name),
		logging.String("state", asset.State.String()),
		logging.Int("bytes", len(req.Data)),
	)
	if i.release {
		defer i.releaseAsset(ctx, logger, asset.Name)
	}

	state, polls, err := i.await(ctx, logger, asset)
	if err != nil {
		if errors.Is(err, ErrMediaFailed) {
			logging.ErrorWithContext(logger, "media processing failed", "media_failed",
				logging.String("asset", asset.Name),
				logging.Int("polls", polls),
				logging.String(logging.FieldErrorHint, "check the file is a supported audio/video format"),
			)
		}
		return "", err
	}
	logger.Info("media active",
		logging.String("asset", asset.Name),
		logging.String("state", state.String()),
		logging.Int("polls", polls),
		logging.Duration("wait", time.Since(started)),
	)

	mimeType := asset.MIMEType
	if mimeType == "" {
		mimeType = req.MIMEType
	}
	transcript, err := i.backend.Transcribe(ctx, asset.URI, mimeType)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "mediaingest", "transcribe", "transcription failed", err)
	}
	logger.Info("transcript ready",
		logging.String("asset", asset.Name),
		logging.Int("chars", textutil.Len(transcript)),
	)
	return transcript, nil
}

// await returns once the asset reaches a terminal state. The state reported
// by the upload is evaluated first, so an asset that is already active needs
// no query and every query is preceded by one poll interval.
func (i *Ingestor) await(ctx context.Context, logger *slog.Logger, asset Asset) (State, int, error) {
	current := asset.State
	polls := 0
	first := true

	operation := func() (State, error) {
		if !first {
			polls++
			state, err := i.backend.State(ctx, asset.Name)
			if err != nil {
				return current, backoff.Permanent(services.Wrap(services.ErrExternalTool, "mediaingest", "poll state", "state query failed", err))
			}
			current = state
			logger.Debug("media state polled", logging.String("asset", asset.Name), logging.String("state", state.String()), logging.Int("poll", polls))
		}
		first = false

		switch current {
		case StateActive:
			return current, nil
		case StateFailed:
			return current, backoff.Permanent(fmt.Errorf("%w: asset %s", ErrMediaFailed, asset.Name))
		default:
			return current, errStillProcessing
		}
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(i.interval), ctx)
	state, err := backoff.RetryNotifyWithData[State](operation, policy, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ErrMediaFailed) {
			return state, polls, services.Wrap(services.ErrTimeout, "mediaingest", "poll state", "abandoned while processing", ctxErr)
		}
		return state, polls, err
	}
	return state, polls, nil
}

func (i *Ingestor) releaseAsset(ctx context.Context, logger *slog.Logger, name string) {
	releaser, ok := i.backend.(Releaser)
	if !ok || name == "" {
		return
	}
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := releaser.Release(releaseCtx, name); err != nil {
		logging.WarnWithContext(logger, "media release failed", "media_release_failed",
			logging.String("asset", name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "uploaded asset left on the backend until it expires"),
		)
		return
	}
	logger.Debug("media released", logging.String("asset", name))
}
