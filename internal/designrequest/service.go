package designrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uniformhub/gateway/internal/media"
	"github.com/uniformhub/gateway/pkg/config"
	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
	"github.com/uniformhub/gateway/pkg/metrics"
)

const uploadPurpose = "design"

type locker interface {
	AcquireLock(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
}

type uploadPipeline interface {
	Run(ctx context.Context, purpose string, files []media.File) (map[string]string, error)
}

type designBackend interface {
	CreateDesignRequest(ctx context.Context, payload any) error
	ImportDesign(ctx context.Context, payload any) error
}

// Service manages drafts and their submission.
type Service interface {
	Create(ctx context.Context, owner string, input CreateInput) (*Draft, error)
	Get(ctx context.Context, owner, id string) (*Draft, error)
	Patch(ctx context.Context, owner, id string, ops []Op) (*Draft, error)
	Delete(ctx context.Context, owner, id string) error
	Validate(ctx context.Context, owner, id string) (Report, error)
	FieldMissing(ctx context.Context, owner, id string, ref FieldRef) (bool, error)
	Submit(ctx context.Context, owner, id string, files map[string]media.File) (*SubmitResult, error)
}

// CreateInput seeds a new draft.
type CreateInput struct {
	DesignType enums.DesignType `json:"design_type"`
	DesignName string           `json:"design_name" validate:"max=200"`
}

// FieldRef addresses one field for IsFieldMissing.
type FieldRef struct {
	Category enums.UniformCategory
	Gender   enums.Gender
	Piece    enums.PieceType
	Field    Field
}

// Redirect is where the client goes once a submission succeeds.
type Redirect struct {
	Path    string `json:"path"`
	DelayMS int64  `json:"delay_ms"`
}

// SubmitResult reports a successful submission.
type SubmitResult struct {
	Status     string           `json:"status"`
	DesignType enums.DesignType `json:"design_type"`
	Items      int              `json:"items"`
	Redirect   Redirect         `json:"redirect"`
}

// Deps bundles the collaborators of the service.
type Deps struct {
	Store    Store
	Locker   locker
	Uploads  uploadPipeline
	Backend  designBackend
	Metrics  *metrics.Gateway
	Logger   *logger.Logger
	Config   config.SubmissionConfig
	Now      func() time.Time
	NewToken func() string
}

type service struct {
	store    Store
	locker   locker
	uploads  uploadPipeline
	backend  designBackend
	metrics  *metrics.Gateway
	logg     *logger.Logger
	cfg      config.SubmissionConfig
	now      func() time.Time
	newToken func() string
}

// NewService validates and wires the dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if deps.Locker == nil {
		return nil, fmt.Errorf("submit locker required")
	}
	if deps.Uploads == nil {
		return nil, fmt.Errorf("upload pipeline required")
	}
	if deps.Backend == nil {
		return nil, fmt.Errorf("design backend required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		store:    deps.Store,
		locker:   deps.Locker,
		uploads:  deps.Uploads,
		backend:  deps.Backend,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
		cfg:      deps.Config,
		now:      deps.Now,
		newToken: deps.NewToken,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newToken == nil {
		svc.newToken = uuid.NewString
	}
	if svc.cfg.LockTTL <= 0 {
		svc.cfg.LockTTL = 2 * time.Minute
	}
	if svc.cfg.RedirectPath == "" {
		svc.cfg.RedirectPath = "/school/design"
	}
	return svc, nil
}

func (s *service) Create(ctx context.Context, owner string, input CreateInput) (*Draft, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "draft owner required")
	}
	d := NewDraft(owner, s.now().UTC())
	if input.DesignType != "" {
		if !input.DesignType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid design type")
		}
		d.DesignType = input.DesignType
	}
	d.DesignName = strings.TrimSpace(input.DesignName)

	if err := s.store.Save(ctx, d); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save draft")
	}
	s.logg.Info(s.logg.WithDraftID(ctx, d.ID), "draft created")
	return d, nil
}

func (s *service) Get(ctx context.Context, owner, id string) (*Draft, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft id required")
	}
	d, err := s.store.Get(ctx, owner, id)
	if errors.Is(err, ErrDraftNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load draft")
	}
	return d, nil
}

// Patch applies ops to the latest stored draft. Overlapping patches of the
// same draft are serialized by the store, so neither loses its ops.
func (s *service) Patch(ctx context.Context, owner, id string, ops []Op) (*Draft, error) {
	if len(ops) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one operation required")
	}
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft id required")
	}
	updated, err := s.store.Update(ctx, owner, id, func(d *Draft) error {
		if err := Apply(d, ops); err != nil {
			return err
		}
		d.UpdatedAt = s.now().UTC()
		return nil
	})
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, ErrDraftNotFound):
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
	case errors.Is(err, ErrDraftContended):
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "draft is being edited elsewhere, retry")
	case pkgerrors.As(err) != nil:
		return nil, err
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save draft")
}

func (s *service) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, owner, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to discard draft")
	}
	return nil
}

func (s *service) Validate(ctx context.Context, owner, id string) (Report, error) {
	d, err := s.Get(ctx, owner, id)
	if err != nil {
		return Report{}, err
	}
	return MissingFields(d), nil
}

func (s *service) FieldMissing(ctx context.Context, owner, id string, ref FieldRef) (bool, error) {
	if !ref.Category.IsValid() || !ref.Gender.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "category and gender required")
	}
	if ref.Field != FieldBottomType && !ref.Piece.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "piece required")
	}
	d, err := s.Get(ctx, owner, id)
	if err != nil {
		return false, err
	}
	return IsFieldMissing(d, ref.Category, ref.Gender, ref.Piece, ref.Field), nil
}

// Submit validates the draft, then holds the per-draft submit lock while the
// images are uploaded and the payload is sent. The draft is reloaded under the
// lock: a draft that vanished meanwhile was submitted by a concurrent request.
func (s *service) Submit(ctx context.Context, owner, id string, files map[string]media.File) (*SubmitResult, error) {
	d, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithFields(s.logg.WithDraftID(ctx, d.ID), map[string]any{"design_type": string(d.DesignType)})

	if err := requireSubmittable(d); err != nil {
		return nil, err
	}

	lockName := "submit:" + d.ID
	token := s.newToken()
	acquired, err := s.locker.AcquireLock(ctx, lockName, token, s.cfg.LockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to start submission")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "submission already in progress")
	}
	defer func() {
		if relErr := s.locker.ReleaseLock(context.WithoutCancel(ctx), lockName, token); relErr != nil {
			s.logg.Warn(s.logg.WithError(logCtx, relErr), "failed to release submit lock")
		}
	}()

	d, err = s.store.Get(ctx, owner, id)
	if errors.Is(err, ErrDraftNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "design request was already submitted")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load draft")
	}
	if err := requireSubmittable(d); err != nil {
		return nil, err
	}

	result, err := s.submitLocked(ctx, logCtx, d, files)
	s.metrics.IncSubmission(string(d.DesignType), err)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, owner, d.ID); err != nil {
		s.logg.Warn(s.logg.WithError(logCtx, err), "failed to discard submitted draft")
	}
	s.logg.Info(logCtx, "design request submitted")
	return result, nil
}

func requireSubmittable(d *Draft) error {
	report := MissingFields(d)
	if !report.CanSubmit {
		return pkgerrors.New(pkgerrors.CodeValidation, "design request is incomplete").WithDetails(report)
	}
	return nil
}

func (s *service) submitLocked(ctx, logCtx context.Context, d *Draft, files map[string]media.File) (*SubmitResult, error) {
	plan := UploadPlan(d)
	batch := make([]media.File, 0, len(plan))
	var missing []string
	for _, job := range plan {
		f, ok := files[job.Slot]
		if !ok || len(f.Data) == 0 {
			missing = append(missing, job.Slot)
			continue
		}
		f.Slot = job.Slot
		if f.Name == "" {
			f.Name = job.Image.Name
		}
		batch = append(batch, f)
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image files missing").
			WithDetails(map[string]any{"missing_slots": missing})
	}

	urls := map[string]string{}
	if len(batch) > 0 {
		uploaded, err := s.uploads.Run(ctx, uploadPurpose, batch)
		if err != nil {
			return nil, err
		}
		urls = uploaded
	}

	var items int
	switch d.DesignType {
	case enums.DesignTypeImport:
		payload, err := BuildImportPayload(d, urls)
		if err != nil {
			return nil, err
		}
		if err := s.backend.ImportDesign(ctx, payload); err != nil {
			return nil, err
		}
		items = len(payload.DesignItemDataList)
	default:
		payload, err := BuildNewDesignPayload(d, urls)
		if err != nil {
			return nil, err
		}
		if err := s.backend.CreateDesignRequest(ctx, payload); err != nil {
			return nil, err
		}
		items = len(payload.DesignItem)
	}

	s.logg.Info(s.logg.WithField(logCtx, "items", items), "design payload accepted")
	return &SubmitResult{
		Status:     "succeeded",
		DesignType: d.DesignType,
		Items:      items,
		Redirect: Redirect{
			Path:    s.cfg.RedirectPath,
			DelayMS: s.cfg.RedirectDelay.Milliseconds(),
		},
	}, nil
}
