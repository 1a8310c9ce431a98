package milestones

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniformhub/gateway/internal/media"
	"github.com/uniformhub/gateway/pkg/backend"
	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

type fakeBackend struct {
	mu         sync.Mutex
	orders     []backend.Order
	milestones map[int64][]backend.Milestone
	failOrder  int64
	updates    []backend.MilestoneStatusUpdate
	viewCalls  int
	updateErr  error
}

func (f *fakeBackend) GetOrdersByGarment(context.Context) ([]backend.Order, error) {
	return f.orders, nil
}

func (f *fakeBackend) ViewMilestone(_ context.Context, orderID int64) ([]backend.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewCalls++
	if orderID == f.failOrder {
		return nil, errors.New("backend down")
	}
	list := f.milestones[orderID]
	out := make([]backend.Milestone, len(list))
	copy(out, list)
	return out, nil
}

func (f *fakeBackend) UpdateMilestoneStatus(_ context.Context, update backend.MilestoneStatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, update)
	for orderID, list := range f.milestones {
		for i := range list {
			if list[i].ID == update.MilestoneID {
				list[i].Status = NextStatus(list[i].Status)
				list[i].ImageURL = update.ImageURL
				f.milestones[orderID] = list
			}
		}
	}
	return nil
}

type fakeUploader struct {
	uploadFn func(ctx context.Context, purpose string, file media.File) (string, error)
	calls    []media.File
}

func (f *fakeUploader) Upload(ctx context.Context, purpose string, file media.File) (string, error) {
	f.calls = append(f.calls, file)
	if f.uploadFn != nil {
		return f.uploadFn(ctx, purpose, file)
	}
	return "https://img/" + file.Slot, nil
}

func newTestService(t *testing.T, b *fakeBackend, up *fakeUploader) Service {
	t.Helper()
	svc, err := NewService(b, up, nil, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), 2)
	require.NoError(t, err)
	return svc
}

func TestOrdersFetchesMilestonesPerOrder(t *testing.T) {
	b := &fakeBackend{
		orders: []backend.Order{{ID: 1}, {ID: 2}, {ID: 3}},
		milestones: map[int64][]backend.Milestone{
			1: {milestone(10, enums.MilestoneStatusAssigned)},
			3: {milestone(30, enums.MilestoneStatusCompleted), milestone(31, enums.MilestoneStatusProcessing)},
		},
		failOrder: 2,
	}
	svc := newTestService(t, b, &fakeUploader{})

	orders, err := svc.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, int64(1), orders[0].Order.ID)
	require.Len(t, orders[0].Milestones, 1)
	assert.True(t, orders[0].Milestones[0].CanUpdate)

	assert.Equal(t, int64(2), orders[1].Order.ID)
	assert.NotNil(t, orders[1].Milestones)
	assert.Empty(t, orders[1].Milestones)

	require.Len(t, orders[2].Milestones, 2)
	assert.True(t, orders[2].Milestones[1].CanUpdate)
	assert.Equal(t, 3, b.viewCalls)
}

func TestAdvanceWithEvidence(t *testing.T) {
	b := &fakeBackend{milestones: map[int64][]backend.Milestone{
		5: {milestone(50, enums.MilestoneStatusCompleted), milestone(51, enums.MilestoneStatusAssigned)},
	}}
	up := &fakeUploader{uploadFn: func(_ context.Context, purpose string, file media.File) (string, error) {
		assert.Equal(t, "milestone", purpose)
		return "https://img/evidence.png", nil
	}}
	svc := newTestService(t, b, up)

	views, err := svc.Advance(context.Background(), AdvanceInput{
		OrderID:     5,
		MilestoneID: 51,
		Image:       &media.File{Name: "photo.png", Data: []byte("png")},
	})
	require.NoError(t, err)

	require.Len(t, up.calls, 1)
	assert.Equal(t, "evidence.51", up.calls[0].Slot)
	assert.Equal(t, []backend.MilestoneStatusUpdate{{MilestoneID: 51, ImageURL: "https://img/evidence.png"}}, b.updates)
	require.Len(t, views, 2)
	assert.Equal(t, enums.MilestoneStatusProcessing, views[1].Status)
	assert.Equal(t, "https://img/evidence.png", views[1].ImageURL)
}

func TestAdvanceWithoutImageSkipsUpload(t *testing.T) {
	b := &fakeBackend{milestones: map[int64][]backend.Milestone{
		5: {milestone(50, enums.MilestoneStatusProcessing)},
	}}
	up := &fakeUploader{}
	svc := newTestService(t, b, up)

	views, err := svc.Advance(context.Background(), AdvanceInput{OrderID: 5, MilestoneID: 50})
	require.NoError(t, err)
	assert.Empty(t, up.calls)
	assert.Equal(t, enums.MilestoneStatusCompleted, views[0].Status)
	assert.False(t, views[0].CanUpdate)
}

func TestAdvanceRejectsOutOfOrder(t *testing.T) {
	b := &fakeBackend{milestones: map[int64][]backend.Milestone{
		5: {milestone(50, enums.MilestoneStatusProcessing), milestone(51, enums.MilestoneStatusAssigned)},
	}}
	svc := newTestService(t, b, &fakeUploader{})

	_, err := svc.Advance(context.Background(), AdvanceInput{OrderID: 5, MilestoneID: 51})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
	assert.Empty(t, b.updates)

	_, err = svc.Advance(context.Background(), AdvanceInput{OrderID: 5, MilestoneID: 99})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAdvanceUploadFailureStopsUpdate(t *testing.T) {
	b := &fakeBackend{milestones: map[int64][]backend.Milestone{
		5: {milestone(50, enums.MilestoneStatusAssigned)},
	}}
	up := &fakeUploader{uploadFn: func(context.Context, string, media.File) (string, error) {
		return "", pkgerrors.New(pkgerrors.CodeUpload, "image upload failed")
	}}
	svc := newTestService(t, b, up)

	_, err := svc.Advance(context.Background(), AdvanceInput{
		OrderID:     5,
		MilestoneID: 50,
		Image:       &media.File{Name: "photo.png", Data: []byte("png")},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUpload, pkgerrors.As(err).Code())
	assert.Empty(t, b.updates)
}
