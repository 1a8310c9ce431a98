package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/uniformhub/gateway/internal/constraints"
	"github.com/uniformhub/gateway/pkg/cloudinary"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
	"github.com/uniformhub/gateway/pkg/metrics"
	"go.uber.org/multierr"
)

type uploader interface {
	Upload(ctx context.Context, file cloudinary.File) (string, error)
}

type constraintsProvider interface {
	Media(ctx context.Context) constraints.MediaConstraints
}

// Pipeline checks and uploads images in a fixed order.
type Pipeline struct {
	uploader    uploader
	constraints constraintsProvider
	metrics     *metrics.Gateway
	logg        *logger.Logger
	now         func() time.Time
}

// NewPipeline wires the image host and constraint source.
func NewPipeline(up uploader, limits constraintsProvider, m *metrics.Gateway, logg *logger.Logger) (*Pipeline, error) {
	if up == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if limits == nil {
		return nil, fmt.Errorf("constraints provider required")
	}
	return &Pipeline{uploader: up, constraints: limits, metrics: m, logg: logg, now: time.Now}, nil
}

// Check validates every file against the media constraints without uploading.
func (p *Pipeline) Check(ctx context.Context, files []File) error {
	limits := p.constraints.Media(ctx)
	var rejected []Rejection
	for _, f := range files {
		if reason := checkFile(f, limits); reason != "" {
			rejected = append(rejected, Rejection{Slot: f.Slot, Reason: reason})
		}
	}
	if len(rejected) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid images").
			WithDetails(map[string]any{"rejected": rejected})
	}
	return nil
}

// Run checks all files, then uploads them one by one in order. Upload failures
// are collected; if any slot fails the whole batch fails and the URLs already
// obtained are discarded.
func (p *Pipeline) Run(ctx context.Context, purpose string, files []File) (map[string]string, error) {
	if err := p.Check(ctx, files); err != nil {
		return nil, err
	}

	urls := make(map[string]string, len(files))
	var errs error
	var failed []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "upload canceled")
		}
		_, contentType := sniffFormat(f.Data)
		start := p.now()
		url, err := p.uploader.Upload(ctx, cloudinary.File{
			Name:        f.Name,
			ContentType: contentType,
			Body:        bytes.NewReader(f.Data),
		})
		p.metrics.ObserveUpload(purpose, p.now().Sub(start), err)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", f.Slot, err))
			failed = append(failed, f.Slot)
			continue
		}
		urls[f.Slot] = url
	}

	if errs != nil {
		if p.logg != nil {
			logCtx := p.logg.WithFields(ctx, map[string]any{
				"purpose":        purpose,
				"failed_slots":   failed,
				"discarded_urls": len(urls),
			})
			p.logg.Warn(logCtx, "image upload batch failed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpload, errs, "image upload failed").
			WithDetails(map[string]any{"failed_slots": failed})
	}
	return urls, nil
}

// Upload runs a single file through the pipeline and returns its URL.
func (p *Pipeline) Upload(ctx context.Context, purpose string, file File) (string, error) {
	urls, err := p.Run(ctx, purpose, []File{file})
	if err != nil {
		return "", err
	}
	return urls[file.Slot], nil
}
