package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	timelineapp "github.com/deatl/backend/internal/application/timeline"
	"github.com/deatl/backend/internal/domain/card"
	"github.com/deatl/backend/internal/domain/shared"
	"github.com/deatl/backend/internal/domain/timeline"
	"github.com/deatl/backend/internal/interfaces/http/middleware"
	"github.com/deatl/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type memMilestoneRepo struct {
	mu    sync.Mutex
	items map[string]*timeline.Milestone
}

func newMemMilestoneRepo() *memMilestoneRepo {
	return &memMilestoneRepo{items: map[string]*timeline.Milestone{}}
}

func (r *memMilestoneRepo) List(ctx context.Context, projectID string) ([]*timeline.Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*timeline.Milestone
	for _, m := range r.items {
		if m.ProjectID == projectID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (r *memMilestoneRepo) ListIDs(ctx context.Context, projectID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, m := range r.items {
		if m.ProjectID == projectID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memMilestoneRepo) Get(ctx context.Context, projectID, id string) (*timeline.Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || m.ProjectID != projectID {
		return nil, shared.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMilestoneRepo) Save(ctx context.Context, m *timeline.Milestone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *memMilestoneRepo) Delete(ctx context.Context, projectID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memMilestoneRepo) ApplyBatch(ctx context.Context, projectID string, change timeline.BatchChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range change.Upserts {
		cp := *m
		r.items[m.ID] = &cp
	}
	for _, id := range change.DeleteIDs {
		delete(r.items, id)
	}
	return nil
}

type memCategoryRepo struct {
	cats       map[string]*timeline.Category
	references map[string]int64
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{cats: map[string]*timeline.Category{}, references: map[string]int64{}}
}

func (r *memCategoryRepo) List(ctx context.Context) ([]*timeline.Category, error) {
	var out []*timeline.Category
	for _, c := range r.cats {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memCategoryRepo) Get(ctx context.Context, id string) (*timeline.Category, error) {
	c, ok := r.cats[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) Save(ctx context.Context, c *timeline.Category) error {
	cp := *c
	r.cats[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.cats[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.cats, id)
	return nil
}

func (r *memCategoryRepo) CountMilestonesReferencing(ctx context.Context, categoryID string) (int64, error) {
	return r.references[categoryID], nil
}

type memProjectRepo struct {
	projects map[string]*timeline.Project
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: map[string]*timeline.Project{}}
}

func (r *memProjectRepo) Get(ctx context.Context, id string) (*timeline.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProjectRepo) Upsert(ctx context.Context, p *timeline.Project) error {
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *memProjectRepo) List(ctx context.Context) ([]*timeline.Project, error) {
	var out []*timeline.Project
	for _, p := range r.projects {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubSource struct {
	attachments []card.Attachment
	actions     []card.Action
	fetchErr    error

	uploaded []string
	linked   []string
}

func (s *stubSource) Attachments(ctx context.Context, cardID string) ([]card.Attachment, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.attachments, nil
}

func (s *stubSource) Actions(ctx context.Context, cardID string) ([]card.Action, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.actions, nil
}

func (s *stubSource) UploadAttachment(ctx context.Context, cardID, fileName, mimeType string, data []byte) (*card.Attachment, error) {
	s.uploaded = append(s.uploaded, fileName)
	att := card.Attachment{
		ID:       "att-" + fileName,
		FileName: fileName,
		MimeType: mimeType,
		Bytes:    int64(len(data)),
		URL:      "https://board.example.com/att/" + fileName,
	}
	return &att, nil
}

func (s *stubSource) AttachURL(ctx context.Context, cardID, name, url string) (*card.Attachment, error) {
	s.linked = append(s.linked, name)
	return &card.Attachment{ID: "link-" + name, FileName: name, URL: url}, nil
}

type stubStore struct{}

func (stubStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return "https://store.example.com/" + key, nil
}

type stubGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newStubGuard() *stubGuard { return &stubGuard{held: map[string]bool{}} }

func (g *stubGuard) Begin(ctx context.Context, cardID string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[cardID] {
		return false, nil
	}
	g.held[cardID] = true
	return true, nil
}

func (g *stubGuard) Clear(ctx context.Context, cardID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, cardID)
	return nil
}

func (g *stubGuard) Active(ctx context.Context, cardID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held[cardID], nil
}

type stubProber struct{ dead map[string]bool }

func (p *stubProber) Reachable(ctx context.Context, url string) bool {
	return !p.dead[url]
}

type testEnv struct {
	engine     *gin.Engine
	milestones *memMilestoneRepo
	categories *memCategoryRepo
	projects   *memProjectRepo
	source     *stubSource
	guard      *stubGuard
	prober     *stubProber
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	env := &testEnv{
		milestones: newMemMilestoneRepo(),
		categories: newMemCategoryRepo(),
		projects:   newMemProjectRepo(),
		source:     &stubSource{},
		guard:      newStubGuard(),
		prober:     &stubProber{dead: map[string]bool{}},
	}

	milestoneSvc := timelineapp.NewMilestoneService(env.milestones, env.categories, logger)
	categorySvc := timelineapp.NewCategoryService(env.categories, logger)
	fileSvc := timelineapp.NewFileService(env.source, stubStore{}, env.milestones, env.prober, logger)
	reconciler := timelineapp.NewReconciler(
		env.source, env.milestones, env.projects, env.categories,
		env.guard, timelineapp.DefaultReconcilerConfig(), logger)

	engine := gin.New()
	engine.Use(middleware.RequestID())

	router.NewRouter(engine).
		Register(NewMilestoneHandler(milestoneSvc, logger)).
		Register(NewCategoryHandler(categorySvc, logger)).
		Register(NewProjectHandler(env.projects, reconciler, logger)).
		Register(NewFileHandler(fileSvc, logger)).
		Setup()

	env.engine = engine
	return env
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env),
			"response body: %s", w.Body.String())
	}
	return w, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NotNil(t, env.Data)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	require.NotEmpty(t, env.Error.RequestID)
}
