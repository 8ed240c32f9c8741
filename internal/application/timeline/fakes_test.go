package timeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/deatl/backend/internal/domain/card"
	"github.com/deatl/backend/internal/domain/shared"
	"github.com/deatl/backend/internal/domain/timeline"
)

type fakeSource struct {
	attachments []card.Attachment
	actions     []card.Action
	fetchErr    error

	uploaded []string
	linked   []string
}

func (f *fakeSource) Attachments(ctx context.Context, cardID string) ([]card.Attachment, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.attachments, nil
}

func (f *fakeSource) Actions(ctx context.Context, cardID string) ([]card.Action, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.actions, nil
}

func (f *fakeSource) UploadAttachment(ctx context.Context, cardID, fileName, mimeType string, data []byte) (*card.Attachment, error) {
	f.uploaded = append(f.uploaded, fileName)
	att := card.Attachment{
		ID:       "att-" + fileName,
		FileName: fileName,
		MimeType: mimeType,
		Bytes:    int64(len(data)),
		URL:      "https://board.example.com/att/" + fileName,
	}
	f.attachments = append(f.attachments, att)
	return &att, nil
}

func (f *fakeSource) AttachURL(ctx context.Context, cardID, name, url string) (*card.Attachment, error) {
	f.linked = append(f.linked, name)
	return &card.Attachment{ID: "link-" + name, FileName: name, URL: url}, nil
}

type fakeMilestoneRepo struct {
	mu       sync.Mutex
	items    map[string]*timeline.Milestone
	writes   int
	batchErr error
	saveErr  error
}

func newFakeMilestoneRepo() *fakeMilestoneRepo {
	return &fakeMilestoneRepo{items: map[string]*timeline.Milestone{}}
}

func (f *fakeMilestoneRepo) List(ctx context.Context, projectID string) ([]*timeline.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*timeline.Milestone
	for _, m := range f.items {
		if m.ProjectID == projectID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (f *fakeMilestoneRepo) ListIDs(ctx context.Context, projectID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, m := range f.items {
		if m.ProjectID == projectID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeMilestoneRepo) Get(ctx context.Context, projectID, id string) (*timeline.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || m.ProjectID != projectID {
		return nil, shared.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMilestoneRepo) Save(ctx context.Context, m *timeline.Milestone) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.items[m.ID] = &cp
	f.writes++
	return nil
}

func (f *fakeMilestoneRepo) Delete(ctx context.Context, projectID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.items, id)
	f.writes++
	return nil
}

func (f *fakeMilestoneRepo) ApplyBatch(ctx context.Context, projectID string, change timeline.BatchChange) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range change.Upserts {
		cp := *m
		f.items[m.ID] = &cp
		f.writes++
	}
	for _, id := range change.DeleteIDs {
		delete(f.items, id)
		f.writes++
	}
	return nil
}

type fakeCategoryRepo struct {
	cats       map[string]*timeline.Category
	references map[string]int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{cats: map[string]*timeline.Category{}, references: map[string]int64{}}
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*timeline.Category, error) {
	var out []*timeline.Category
	for _, c := range f.cats {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCategoryRepo) Get(ctx context.Context, id string) (*timeline.Category, error) {
	c, ok := f.cats[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryRepo) Save(ctx context.Context, c *timeline.Category) error {
	cp := *c
	f.cats[c.ID] = &cp
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.cats[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.cats, id)
	return nil
}

func (f *fakeCategoryRepo) CountMilestonesReferencing(ctx context.Context, categoryID string) (int64, error) {
	return f.references[categoryID], nil
}

type fakeProjectRepo struct {
	projects map[string]*timeline.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*timeline.Project{}}
}

func (f *fakeProjectRepo) Get(ctx context.Context, id string) (*timeline.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectRepo) Upsert(ctx context.Context, p *timeline.Project) error {
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjectRepo) List(ctx context.Context) ([]*timeline.Project, error) {
	var out []*timeline.Project
	for _, p := range f.projects {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type fakeGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{held: map[string]bool{}}
}

func (f *fakeGuard) Begin(ctx context.Context, cardID string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[cardID] {
		return false, nil
	}
	f.held[cardID] = true
	return true, nil
}

func (f *fakeGuard) Clear(ctx context.Context, cardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, cardID)
	return nil
}

func (f *fakeGuard) Active(ctx context.Context, cardID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held[cardID], nil
}

type fakeObjectStore struct {
	uploads map[string]int64
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploads: map[string]int64{}}
}

func (f *fakeObjectStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	f.uploads[key] = int64(len(data))
	return "https://store.example.com/" + key, nil
}

type fakeProber struct {
	dead map[string]bool
}

func (f *fakeProber) Reachable(ctx context.Context, url string) bool {
	return !f.dead[url]
}
