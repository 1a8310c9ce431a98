package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/uniformhub/gateway/internal/media"
	"github.com/uniformhub/gateway/pkg/backend"
	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

const (
	// MaxImages caps the images attached to one entry.
	MaxImages     = 4
	uploadPurpose = "feedback"
)

type feedbackBackend interface {
	SubmitFeedback(ctx context.Context, feedback backend.Feedback) error
}

type uploadPipeline interface {
	Run(ctx context.Context, purpose string, files []media.File) (map[string]string, error)
}

// Service records feedback and problem reports.
type Service interface {
	Submit(ctx context.Context, input Input) error
}

// Input is one feedback or report as received from the form.
type Input struct {
	Type     enums.FeedbackType `validate:"required"`
	TargetID string             `validate:"required,max=128"`
	Content  string             `validate:"required,max=2000"`
	Rating   int                `validate:"min=0,max=5"`
	Images   []media.File       `validate:"max=4"`
}

type service struct {
	backend  feedbackBackend
	uploads  uploadPipeline
	logg     *logger.Logger
	validate *validator.Validate
}

func NewService(b feedbackBackend, uploads uploadPipeline, logg *logger.Logger) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("feedback backend required")
	}
	if uploads == nil {
		return nil, fmt.Errorf("upload pipeline required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: b, uploads: uploads, logg: logg, validate: validator.New()}, nil
}

func (s *service) Submit(ctx context.Context, input Input) error {
	input.TargetID = strings.TrimSpace(input.TargetID)
	input.Content = strings.TrimSpace(input.Content)
	if err := s.check(input); err != nil {
		return err
	}

	files := make([]media.File, 0, len(input.Images))
	for i, img := range input.Images {
		img.Slot = fmt.Sprintf("image.%d", i)
		files = append(files, img)
	}
	images := []string{}
	if len(files) > 0 {
		urls, err := s.uploads.Run(ctx, uploadPurpose, files)
		if err != nil {
			return err
		}
		for _, f := range files {
			images = append(images, urls[f.Slot])
		}
	}

	rating := input.Rating
	if input.Type == enums.FeedbackTypeReport {
		rating = 0
	}
	if err := s.backend.SubmitFeedback(ctx, backend.Feedback{
		Type:     input.Type,
		TargetID: input.TargetID,
		Content:  input.Content,
		Rating:   rating,
		Images:   images,
	}); err != nil {
		return err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"feedback_type": string(input.Type),
		"target_id":     input.TargetID,
		"images":        len(images),
	})
	s.logg.Info(logCtx, "feedback submitted")
	return nil
}

func (s *service) check(input Input) error {
	fields := map[string]string{}
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid feedback")
		}
		for _, fe := range verrs {
			fields[fieldName(fe.Field())] = fe.Tag()
		}
	}
	if input.Type != "" && !input.Type.IsValid() {
		fields["type"] = "oneof"
	}
	if input.Type == enums.FeedbackTypeFeedback && input.Rating < 1 {
		fields["rating"] = "required"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid feedback").WithDetails(fields)
	}
	return nil
}

func fieldName(field string) string {
	switch field {
	case "TargetID":
		return "target_id"
	default:
		return strings.ToLower(field)
	}
}
