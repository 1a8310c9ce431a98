package designrequest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniformhub/gateway/internal/media"
	"github.com/uniformhub/gateway/pkg/config"
	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
	"github.com/uniformhub/gateway/pkg/logger"
)

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	acquires int
	releases int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) AcquireLock(_ context.Context, name, token string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquires++
	if _, ok := l.held[name]; ok {
		return false, nil
	}
	l.held[name] = token
	return true, nil
}

func (l *fakeLocker) ReleaseLock(_ context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
	if l.held[name] == token {
		delete(l.held, name)
	}
	return nil
}

type fakeUploads struct {
	runFn func(ctx context.Context, purpose string, files []media.File) (map[string]string, error)
	calls int
}

func (f *fakeUploads) Run(ctx context.Context, purpose string, files []media.File) (map[string]string, error) {
	f.calls++
	if f.runFn != nil {
		return f.runFn(ctx, purpose, files)
	}
	urls := make(map[string]string, len(files))
	for _, file := range files {
		urls[file.Slot] = "https://img/" + file.Slot
	}
	return urls, nil
}

type fakeDesignBackend struct {
	createFn func(ctx context.Context, payload any) error
	created  []any
	imported []any
}

func (f *fakeDesignBackend) CreateDesignRequest(ctx context.Context, payload any) error {
	f.created = append(f.created, payload)
	if f.createFn != nil {
		return f.createFn(ctx, payload)
	}
	return nil
}

func (f *fakeDesignBackend) ImportDesign(_ context.Context, payload any) error {
	f.imported = append(f.imported, payload)
	return nil
}

type serviceFixture struct {
	svc     Service
	store   Store
	kv      *memoryKV
	locker  *fakeLocker
	uploads *fakeUploads
	backend *fakeDesignBackend
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	return newServiceFixtureWithStore(t, nil)
}

// newServiceFixtureWithStore lets a test wrap the store the service sees;
// seeding still goes straight to the underlying store.
func newServiceFixtureWithStore(t *testing.T, wrap func(Store) Store) *serviceFixture {
	t.Helper()
	kv := newMemoryKV()
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)
	f := &serviceFixture{
		store:   store,
		kv:      kv,
		locker:  newFakeLocker(),
		uploads: &fakeUploads{},
		backend: &fakeDesignBackend{},
	}
	svcStore := Store(store)
	if wrap != nil {
		svcStore = wrap(store)
	}
	f.svc, err = NewService(Deps{
		Store:   svcStore,
		Locker:  f.locker,
		Uploads: f.uploads,
		Backend: f.backend,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Config: config.SubmissionConfig{
			LockTTL:       time.Minute,
			RedirectDelay: 1500 * time.Millisecond,
			RedirectPath:  "/school/design",
		},
		Now: func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return f
}

func (f *serviceFixture) seed(t *testing.T, d *Draft) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), d))
}

func pngFile() media.File {
	return media.File{Name: "file.png", Data: []byte("\x89PNG\r\n\x1a\n0000")}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
	return typed
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(Deps{})
	assert.Error(t, err)
}

func TestCreateAndPatch(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	d, err := f.svc.Create(ctx, "head@school.edu", CreateInput{DesignType: enums.DesignTypeImport, DesignName: "  Fall  "})
	require.NoError(t, err)
	assert.Equal(t, enums.DesignTypeImport, d.DesignType)
	assert.Equal(t, "Fall", d.DesignName)

	patched, err := f.svc.Patch(ctx, "head@school.edu", d.ID, []Op{
		{Path: "regular.selected", Value: json.RawMessage(`true`)},
	})
	require.NoError(t, err)
	assert.True(t, patched.Selection(enums.UniformCategoryRegular).Selected)

	_, err = f.svc.Patch(ctx, "head@school.edu", d.ID, []Op{
		{Path: "design_name", Value: json.RawMessage(`"Changed"`)},
		{Path: "regular.boy.skirt.fabric_id", Value: json.RawMessage(`1`)},
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	stored, err := f.svc.Get(ctx, "head@school.edu", d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fall", stored.DesignName, "failed patch must not persist partial changes")

	_, err = f.svc.Create(ctx, "head@school.edu", CreateInput{DesignType: "copy"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestGetUnknownDraft(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Get(context.Background(), "head@school.edu", "missing")
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestFieldMissingSingleField(t *testing.T) {
	f := newServiceFixture(t)
	d := regularBoyNewDraft(t)
	mustApply(t, d, "regular.boy.pants.fabric_id", `0`)
	f.seed(t, d)

	missing, err := f.svc.FieldMissing(context.Background(), d.Owner, d.ID, FieldRef{
		Category: enums.UniformCategoryRegular, Gender: enums.GenderBoy, Piece: enums.PieceTypePants, Field: FieldFabric,
	})
	require.NoError(t, err)
	assert.True(t, missing)

	_, err = f.svc.FieldMissing(context.Background(), d.Owner, d.ID, FieldRef{Category: "formal", Gender: enums.GenderBoy})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestSubmitIncompleteNeverLocks(t *testing.T) {
	f := newServiceFixture(t)
	d := NewDraft("head@school.edu", testNow)
	mustApply(t, d, "design_name", `"Spring"`, "logo", hostedImage("https://img/logo.png"))
	f.seed(t, d)

	_, err := f.svc.Submit(context.Background(), d.Owner, d.ID, nil)
	typed := requireCode(t, err, pkgerrors.CodeValidation)
	report, ok := typed.Details().(Report)
	require.True(t, ok)
	assert.Contains(t, report.Messages[0], "Uniform Type")

	assert.Zero(t, f.locker.acquires)
	assert.Zero(t, f.uploads.calls)
	assert.Empty(t, f.backend.created)
}

func TestSubmitNewDesign(t *testing.T) {
	f := newServiceFixture(t)
	d := regularBoyNewDraft(t)
	mustApply(t, d, "regular.boy.shirt.references", `[{"name":"r.png"}]`)
	f.seed(t, d)

	var uploaded []string
	f.uploads.runFn = func(_ context.Context, purpose string, files []media.File) (map[string]string, error) {
		assert.Equal(t, "design", purpose)
		urls := map[string]string{}
		for _, file := range files {
			uploaded = append(uploaded, file.Slot)
			urls[file.Slot] = "https://img/" + file.Slot
		}
		return urls, nil
	}

	result, err := f.svc.Submit(context.Background(), d.Owner, d.ID, map[string]media.File{
		SlotLogo:                        pngFile(),
		"regular.boy.shirt.reference.0": pngFile(),
	})
	require.NoError(t, err)
	assert.Equal(t, &SubmitResult{
		Status:     "succeeded",
		DesignType: enums.DesignTypeNew,
		Items:      2,
		Redirect:   Redirect{Path: "/school/design", DelayMS: 1500},
	}, result)
	assert.Equal(t, []string{SlotLogo, "regular.boy.shirt.reference.0"}, uploaded)

	require.Len(t, f.backend.created, 1)
	payload, ok := f.backend.created[0].(NewDesignPayload)
	require.True(t, ok)
	assert.Equal(t, "https://img/logo", payload.LogoImage)
	require.Len(t, payload.DesignItem, 2)
	assert.Equal(t, enums.PieceTypeShirt, payload.DesignItem[0].ItemType)
	assert.Equal(t, enums.PieceTypePants, payload.DesignItem[1].ItemType)

	assert.Empty(t, f.locker.held)
	_, err = f.svc.Get(context.Background(), d.Owner, d.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestSubmitImportUsesImportEndpoint(t *testing.T) {
	f := newServiceFixture(t)
	d := regularBoyNewDraft(t)
	mustApply(t, d, "design_type", `"import"`, "logo", hostedImage("https://img/logo.png"))
	importShirtFields(t, d, "regular.boy.shirt")
	mustApply(t, d,
		"regular.boy.pants.front_design", hostedImage("https://img/pf.png"),
		"regular.boy.pants.back_design", hostedImage("https://img/pb.png"),
	)
	f.seed(t, d)

	result, err := f.svc.Submit(context.Background(), d.Owner, d.ID, map[string]media.File{
		"regular.boy.shirt.front": pngFile(),
		"regular.boy.shirt.back":  pngFile(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.DesignTypeImport, result.DesignType)
	assert.Empty(t, f.backend.created)
	require.Len(t, f.backend.imported, 1)
	payload := f.backend.imported[0].(ImportPayload)
	assert.Equal(t, "https://img/regular.boy.shirt.front", payload.DesignItemDataList[0].FrontImage)
}

func TestSubmitMissingFiles(t *testing.T) {
	f := newServiceFixture(t)
	d := regularBoyNewDraft(t)
	f.seed(t, d)

	_, err := f.svc.Submit(context.Background(), d.Owner, d.ID, map[string]media.File{})
	typed := requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, map[string]any{"missing_slots": []string{SlotLogo}}, typed.Details())
	assert.Zero(t, f.uploads.calls)
	assert.Empty(t, f.locker.held)
}

func TestSubmitUploadFailureKeepsDraft(t *testing.T) {
	f := newServiceFixture(t)
	d := regularBoyNewDraft(t)
	f.seed(t, d)

	f.uploads.runFn = func(context.Context, string, []media.File) (map[string]string, error) {
		return nil, pkgerrors.New(pkgerrors.CodeUpload, "image upload failed")
	}
	_, err := f.svc.Submit(context.Background(), d.Owner, d.ID, map[string]media.File{SlotLogo: pngFile()})
	requireCode(t, err, pkgerrors.CodeUpload)
	assert.Empty(t, f.backend.created)
	assert.Empty(t, f.locker.held)

	_, err = f.svc.Get(context.Background(), d.Owner, d.ID)
	assert.NoError(t, err)
}

func TestSubmitBackendFailureKeepsDraft(t *testing.T) {
	f := newServiceFixture(t)
	d := regularBoyNewDraft(t)
	mustApply(t, d, "logo", hostedImage("https://img/logo.png"))
	f.seed(t, d)

	f.backend.createFn = func(context.Context, any) error {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("boom"), "failed to create design request")
	}
	_, err := f.svc.Submit(context.Background(), d.Owner, d.ID, nil)
	requireCode(t, err, pkgerrors.CodeDependency)
	assert.Zero(t, f.uploads.calls)

	_, err = f.svc.Get(context.Background(), d.Owner, d.ID)
	assert.NoError(t, err)
}

func TestSubmitConcurrentIsRejected(t *testing.T) {
	f := newServiceFixture(t)
	d := regularBoyNewDraft(t)
	mustApply(t, d, "logo", hostedImage("https://img/logo.png"))
	f.seed(t, d)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.backend.createFn = func(context.Context, any) error {
		close(entered)
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), d.Owner, d.ID, nil)
		done <- err
	}()
	<-entered

	_, err := f.svc.Submit(context.Background(), d.Owner, d.ID, nil)
	requireCode(t, err, pkgerrors.CodeConflict)

	close(release)
	require.NoError(t, <-done)
	require.Len(t, f.backend.created, 1)
}

func TestPatchKeepsConcurrentEdits(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	d := regularBoyNewDraft(t)
	f.seed(t, d)

	f.kv.beforeCommit = func() {
		f.kv.beforeCommit = nil
		_, err := f.svc.Patch(ctx, d.Owner, d.ID, []Op{
			{Path: "design_name", Value: json.RawMessage(`"Edited in another tab"`)},
		})
		require.NoError(t, err)
	}

	patched, err := f.svc.Patch(ctx, d.Owner, d.ID, []Op{
		{Path: "regular.boy.pants.fabric_id", Value: json.RawMessage(`9`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.kv.conflicts)

	stored, err := f.svc.Get(ctx, d.Owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited in another tab", patched.DesignName)
	assert.Equal(t, "Edited in another tab", stored.DesignName)
	assert.Equal(t, 9, stored.Piece(enums.UniformCategoryRegular, enums.GenderBoy, enums.PieceTypePants).FabricID)
}

func TestPatchContendedIsConflict(t *testing.T) {
	f := newServiceFixture(t)
	d := regularBoyNewDraft(t)
	f.seed(t, d)

	f.kv.beforeCommit = func() {
		key := f.kv.DraftKey(d.Owner, d.ID)
		f.kv.mu.Lock()
		f.kv.values[key] += " "
		f.kv.mu.Unlock()
	}
	_, err := f.svc.Patch(context.Background(), d.Owner, d.ID, []Op{
		{Path: "design_name", Value: json.RawMessage(`"Lost"`)},
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

// pausingStore holds the first Get until resume is closed, leaving the caller
// with a draft read before anything else happens.
type pausingStore struct {
	Store
	hit    atomic.Bool
	paused chan struct{}
	resume chan struct{}
}

func (s *pausingStore) Get(ctx context.Context, owner, id string) (*Draft, error) {
	d, err := s.Store.Get(ctx, owner, id)
	if s.hit.CompareAndSwap(false, true) {
		close(s.paused)
		<-s.resume
	}
	return d, err
}

func TestSubmitAfterConcurrentSubmitIsRejected(t *testing.T) {
	paused := &pausingStore{paused: make(chan struct{}), resume: make(chan struct{})}
	f := newServiceFixtureWithStore(t, func(s Store) Store {
		paused.Store = s
		return paused
	})
	d := regularBoyNewDraft(t)
	mustApply(t, d, "logo", hostedImage("https://img/logo.png"))
	f.seed(t, d)

	late := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), d.Owner, d.ID, nil)
		late <- err
	}()
	<-paused.paused

	_, err := f.svc.Submit(context.Background(), d.Owner, d.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, f.locker.held)

	close(paused.resume)
	err = <-late
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.Len(t, f.backend.created, 1)
	assert.Empty(t, f.locker.held)
}
