package milestones

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/uniformhub/gateway/internal/media"
	"github.com/uniformhub/gateway/pkg/backend"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
	"github.com/uniformhub/gateway/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	uploadPurpose     = "milestone"
	evidenceSlot      = "evidence"
	defaultFetchLimit = 8
)

type orderBackend interface {
	GetOrdersByGarment(ctx context.Context) ([]backend.Order, error)
	ViewMilestone(ctx context.Context, orderID int64) ([]backend.Milestone, error)
	UpdateMilestoneStatus(ctx context.Context, update backend.MilestoneStatusUpdate) error
}

type imageUploader interface {
	Upload(ctx context.Context, purpose string, file media.File) (string, error)
}

// Service exposes the garment factory's production tracker.
type Service interface {
	Orders(ctx context.Context) ([]OrderMilestones, error)
	Milestones(ctx context.Context, orderID int64) ([]View, error)
	Advance(ctx context.Context, input AdvanceInput) ([]View, error)
}

// OrderMilestones pairs an order with its annotated milestones.
type OrderMilestones struct {
	Order      backend.Order `json:"order"`
	Milestones []View        `json:"milestones"`
}

// AdvanceInput moves one milestone to its next status. Image is the optional
// evidence photo.
type AdvanceInput struct {
	OrderID     int64
	MilestoneID int64
	Image       *media.File
}

type service struct {
	backend    orderBackend
	uploads    imageUploader
	metrics    *metrics.Gateway
	logg       *logger.Logger
	fetchLimit int
}

// NewService wires the tracker dependencies. fetchLimit bounds concurrent
// milestone requests.
func NewService(b orderBackend, uploads imageUploader, m *metrics.Gateway, logg *logger.Logger, fetchLimit int) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("order backend required")
	}
	if uploads == nil {
		return nil, fmt.Errorf("image uploader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if fetchLimit <= 0 {
		fetchLimit = defaultFetchLimit
	}
	return &service{backend: b, uploads: uploads, metrics: m, logg: logg, fetchLimit: fetchLimit}, nil
}

// Orders loads the factory's orders, then every order's milestones
// concurrently. An order whose milestones fail to load is returned with an
// empty list.
func (s *service) Orders(ctx context.Context) ([]OrderMilestones, error) {
	orders, err := s.backend.GetOrdersByGarment(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	byID := make(map[int64][]backend.Milestone, len(orders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchLimit)
	for _, order := range orders {
		orderID := order.ID
		g.Go(func() error {
			list, err := s.backend.ViewMilestone(gctx, orderID)
			if err != nil {
				s.logg.Warn(s.logg.WithError(s.logg.WithOrderID(ctx, orderID), err), "failed to load order milestones")
				list = []backend.Milestone{}
			}
			mu.Lock()
			byID[orderID] = list
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]OrderMilestones, 0, len(orders))
	for _, order := range orders {
		out = append(out, OrderMilestones{Order: order, Milestones: Annotate(byID[order.ID])})
	}
	return out, nil
}

func (s *service) Milestones(ctx context.Context, orderID int64) ([]View, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	list, err := s.backend.ViewMilestone(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return Annotate(list), nil
}

// Advance uploads the evidence image if one is given, advances the milestone
// and returns the order's refreshed milestones.
func (s *service) Advance(ctx context.Context, input AdvanceInput) ([]View, error) {
	if input.OrderID <= 0 || input.MilestoneID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and milestone id required")
	}
	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, input.OrderID), "milestone_id", input.MilestoneID)

	current, err := s.backend.ViewMilestone(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	var target *backend.Milestone
	for i := range current {
		if current[i].ID == input.MilestoneID {
			target = &current[i]
			break
		}
	}
	if target == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "milestone not found")
	}
	if !CanUpdateMilestone(*target, current) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "milestone cannot be updated yet").
			WithDetails(map[string]any{"status": target.Status})
	}
	next := NextStatus(target.Status)

	err = s.advance(ctx, input)
	s.metrics.IncAdvance(string(next), err)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(logCtx, "status", string(next)), "milestone advanced")

	refreshed, err := s.backend.ViewMilestone(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	return Annotate(refreshed), nil
}

func (s *service) advance(ctx context.Context, input AdvanceInput) error {
	var imageURL string
	if input.Image != nil && len(input.Image.Data) > 0 {
		file := *input.Image
		file.Slot = evidenceSlot + "." + strconv.FormatInt(input.MilestoneID, 10)
		url, err := s.uploads.Upload(ctx, uploadPurpose, file)
		if err != nil {
			return err
		}
		imageURL = url
	}
	return s.backend.UpdateMilestoneStatus(ctx, backend.MilestoneStatusUpdate{
		MilestoneID: input.MilestoneID,
		ImageURL:    imageURL,
	})
}
