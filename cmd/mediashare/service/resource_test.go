package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/repository"
)

// fakeResourceStore keeps resources in a map, deep-copying on the way in
// and out so tests catch missing saves.
type fakeResourceStore struct {
	resources map[uuid.UUID]*models.Resource
	saveErr   error
}

func newFakeResourceStore() *fakeResourceStore {
	return &fakeResourceStore{resources: make(map[uuid.UUID]*models.Resource)}
}

func copyResource(res *models.Resource) *models.Resource {
	cp := *res
	cp.Flaggers = append([]uuid.UUID(nil), res.Flaggers...)
	cp.BarredFlaggers = append([]uuid.UUID(nil), res.BarredFlaggers...)
	cp.Likes = append([]uuid.UUID(nil), res.Likes...)
	cp.Notes = append([]models.Note(nil), res.Notes...)
	return &cp
}

func (f *fakeResourceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	res, ok := f.resources[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyResource(res), nil
}

func (f *fakeResourceStore) Create(ctx context.Context, res *models.Resource) error {
	f.resources[res.ID] = copyResource(res)
	return nil
}

func (f *fakeResourceStore) Save(ctx context.Context, res *models.Resource) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.resources[res.ID]; !ok {
		return repository.ErrNotFound
	}
	f.resources[res.ID] = copyResource(res)
	return nil
}

func (f *fakeResourceStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.resources[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.resources, id)
	return nil
}

func (f *fakeResourceStore) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Resource, error) {
	var out []*models.Resource
	for _, res := range f.resources {
		if res.Owner == owner {
			out = append(out, copyResource(res))
		}
	}
	return out, nil
}

func (f *fakeResourceStore) ListFlagged(ctx context.Context) ([]*models.Resource, error) {
	var out []*models.Resource
	for _, res := range f.resources {
		if res.Flagged() {
			out = append(out, copyResource(res))
		}
	}
	return out, nil
}

type fakeAgentStore struct {
	agents map[uuid.UUID]*models.Agent
}

func newFakeAgentStore() *fakeAgentStore {
	return &fakeAgentStore{agents: make(map[uuid.UUID]*models.Agent)}
}

func (f *fakeAgentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, ok := f.agents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *agent
	cp.CanRead = append([]uuid.UUID(nil), agent.CanRead...)
	return &cp, nil
}

func (f *fakeAgentStore) GetByEmail(ctx context.Context, email string) (*models.Agent, error) {
	for _, agent := range f.agents {
		if agent.Email == email {
			return agent, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAgentStore) Create(ctx context.Context, agent *models.Agent) error {
	f.agents[agent.ID] = agent
	return nil
}

func (f *fakeAgentStore) Save(ctx context.Context, agent *models.Agent) error {
	if _, ok := f.agents[agent.ID]; !ok {
		return repository.ErrNotFound
	}
	f.agents[agent.ID] = agent
	return nil
}

type recordedEvent struct {
	topic string
	key   string
}

type fakeEvents struct {
	published []recordedEvent
}

func (f *fakeEvents) Publish(ctx context.Context, topic string, key string, message []byte) error {
	f.published = append(f.published, recordedEvent{topic: topic, key: key})
	return nil
}

type fixture struct {
	svc       *ResourceService
	resources *fakeResourceStore
	agents    *fakeAgentStore
	events    *fakeEvents
	daniel    *models.Agent
	lanny     *models.Agent
	sudo      *Operator
}

func newFixture(t *testing.T, screenRules ...string) *fixture {
	t.Helper()

	resources := newFakeResourceStore()
	agents := newFakeAgentStore()
	events := &fakeEvents{}

	daniel := newTestAgent("daniel@example.com")
	lanny := newTestAgent("lanny@example.com")
	agents.agents[daniel.ID] = daniel
	agents.agents[lanny.ID] = lanny

	svc := NewResourceService(&ResourceServiceOpts{
		Resources: resources,
		Agents:    agents,
		Events:    events,
		Screener:  NewScreener(screenRules, testLogger()),
		Sudo:      func() string { return sudoEmail },
		Logger:    testLogger(),
	})

	return &fixture{
		svc:       svc,
		resources: resources,
		agents:    agents,
		events:    events,
		daniel:    daniel,
		lanny:     lanny,
		sudo:      &Operator{ID: uuid.New(), Email: sudoEmail},
	}
}

func (f *fixture) createResource(t *testing.T, owner *models.Agent) *models.Resource {
	t.Helper()
	res, err := f.svc.Create(context.Background(), asOperator(owner), &CreateResourceRequest{
		Kind:      models.KindImage,
		MediaPath: "uploads/" + owner.Email + "/img.jpg",
	})
	require.NoError(t, err)
	return res
}

func TestResourceService_CreateRequiresOperator(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), nil, &CreateResourceRequest{
		Kind:      models.KindImage,
		MediaPath: "uploads/x.jpg",
	})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResourceService_CreateRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), asOperator(f.daniel), &CreateResourceRequest{
		Kind:      "video",
		MediaPath: "uploads/x.mp4",
	})
	assert.Error(t, err)
}

func TestResourceService_GetHonorsGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)

	// Lanny is not yet a reader
	_, _, err := f.svc.Get(ctx, asOperator(f.lanny), res.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	f.daniel.Grant(f.lanny.ID)

	got, dec, err := f.svc.Get(ctx, asOperator(f.lanny), res.ID)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, res.ID, got.ID)
}

func TestResourceService_GetNotFound(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Get(context.Background(), asOperator(f.daniel), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourceService_GetFlaggedAdvisoryForOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)

	f.daniel.Grant(f.lanny.ID)
	_, err := f.svc.Flag(ctx, asOperator(f.lanny), res.ID)
	require.NoError(t, err)

	_, dec, err := f.svc.Get(ctx, asOperator(f.daniel), res.ID)
	require.NoError(t, err)
	assert.True(t, dec.FlaggedAdvisory)
}

func TestResourceService_ToggleLikePersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)
	f.daniel.Grant(f.lanny.ID)

	_, liked, err := f.svc.ToggleLike(ctx, asOperator(f.lanny), res.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	stored := f.resources.resources[res.ID]
	assert.True(t, stored.HasLiked(f.lanny.ID))

	_, liked, err = f.svc.ToggleLike(ctx, asOperator(f.lanny), res.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, f.resources.resources[res.ID].Likes)
}

// Flagging, super-agent review, and the re-flag bar across the whole
// service surface.
func TestResourceService_ModerationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)
	f.daniel.Grant(f.lanny.ID)

	// Lanny flags the photo
	_, err := f.svc.Flag(ctx, asOperator(f.lanny), res.ID)
	require.NoError(t, err)

	// Flagged content cannot be published, even by the owner
	_, err = f.svc.Publish(ctx, asOperator(f.daniel), res.ID)
	assert.ErrorIs(t, err, ErrFlagged)

	// The super-agent reviews and deflags
	_, err = f.svc.Deflag(ctx, f.sudo, res.ID)
	require.NoError(t, err)

	stored := f.resources.resources[res.ID]
	assert.False(t, stored.Flagged())
	assert.True(t, stored.Approved())

	// Lanny's re-flag is barred
	_, err = f.svc.Flag(ctx, asOperator(f.lanny), res.ID)
	assert.ErrorIs(t, err, ErrAdministrativelyApproved)

	// A fresh flagger is not barred
	mika := newTestAgent("mika@example.com")
	f.agents.agents[mika.ID] = mika
	f.daniel.Grant(mika.ID)
	_, err = f.svc.Flag(ctx, asOperator(mika), res.ID)
	require.NoError(t, err)

	// The owner cannot deflag once a super-agent has ruled
	_, err = f.svc.Deflag(ctx, asOperator(f.daniel), res.ID)
	assert.ErrorIs(t, err, ErrAdministrativelyApproved)

	// Moderation events were published for every transition
	assert.Len(t, f.events.published, 3)
	for _, ev := range f.events.published {
		assert.Equal(t, ModerationTopic, ev.topic)
	}
}

func TestResourceService_PublishThenAnonymousView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)

	_, _, err := f.svc.Get(ctx, nil, res.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.Publish(ctx, asOperator(f.daniel), res.ID)
	require.NoError(t, err)

	got, _, err := f.svc.Get(ctx, nil, res.ID)
	require.NoError(t, err)
	assert.True(t, got.Published())
}

func TestResourceService_DeleteReturnsMediaPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)

	// Only the owner (or sudo) may delete
	_, err := f.svc.Delete(ctx, asOperator(f.lanny), res.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	path, err := f.svc.Delete(ctx, asOperator(f.daniel), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.MediaPath, path)

	_, _, err = f.svc.Get(ctx, asOperator(f.daniel), res.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourceService_EditMetadataMergePatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, asOperator(f.daniel), &CreateResourceRequest{
		Kind:      models.KindTrack,
		MediaPath: "uploads/song.ogg",
		Metadata:  []byte(`{"title":"demo","genre":"folk"}`),
	})
	require.NoError(t, err)

	updated, err := f.svc.EditMetadata(ctx, asOperator(f.daniel), res.ID, []byte(`{"genre":null,"year":2026}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"demo","year":2026}`, string(updated.Metadata))

	// Patch over empty metadata starts from an empty document
	res2 := f.createResource(t, f.daniel)
	updated, err = f.svc.EditMetadata(ctx, asOperator(f.daniel), res2.ID, []byte(`{"caption":"dawn"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"caption":"dawn"}`, string(updated.Metadata))

	_, err = f.svc.EditMetadata(ctx, asOperator(f.daniel), res2.ID, []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestResourceService_AddNoteScreeningAutoFlags(t *testing.T) {
	f := newFixture(t, `text.contains('http://')`)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)
	f.daniel.Grant(f.lanny.ID)

	// Clean note passes without flagging
	updated, err := f.svc.AddNote(ctx, asOperator(f.lanny), res.ID, "lovely composition")
	require.NoError(t, err)
	assert.False(t, updated.Flagged())

	// Spammy note is kept but the resource gets flagged by the screener
	updated, err = f.svc.AddNote(ctx, asOperator(f.lanny), res.ID, "visit http://spam.example")
	require.NoError(t, err)
	assert.Len(t, updated.Notes, 2)
	assert.True(t, updated.Flagged())
	assert.True(t, updated.HasFlagged(ScreenerAgentID))
}

func TestResourceService_DeleteNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)
	f.daniel.Grant(f.lanny.ID)

	updated, err := f.svc.AddNote(ctx, asOperator(f.lanny), res.ID, "first")
	require.NoError(t, err)
	noteID := updated.Notes[0].ID

	mika := newTestAgent("mika@example.com")
	f.agents.agents[mika.ID] = mika
	f.daniel.Grant(mika.ID)

	// A third party may not delete someone else's note
	_, err = f.svc.DeleteNote(ctx, asOperator(mika), res.ID, noteID)
	assert.ErrorIs(t, err, ErrForbidden)

	// The resource owner may
	updated, err = f.svc.DeleteNote(ctx, asOperator(f.daniel), res.ID, noteID)
	require.NoError(t, err)
	assert.Empty(t, updated.Notes)

	_, err = f.svc.DeleteNote(ctx, asOperator(f.daniel), res.ID, noteID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResourceService_ListFlaggedSudoOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)
	f.daniel.Grant(f.lanny.ID)

	_, err := f.svc.Flag(ctx, asOperator(f.lanny), res.ID)
	require.NoError(t, err)

	_, err = f.svc.ListFlagged(ctx, asOperator(f.daniel))
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := f.svc.ListFlagged(ctx, f.sudo)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ID, list[0].ID)
}

func TestResourceService_ListByOwnerFiltersByViewability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hidden := f.createResource(t, f.daniel)
	published := f.createResource(t, f.daniel)
	_, err := f.svc.Publish(ctx, asOperator(f.daniel), published.ID)
	require.NoError(t, err)

	// The owner sees both
	list, err := f.svc.ListByOwner(ctx, asOperator(f.daniel), f.daniel.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// A stranger sees only the published one
	list, err = f.svc.ListByOwner(ctx, asOperator(f.lanny), f.daniel.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, published.ID, list[0].ID)

	// A granted reader sees both
	f.daniel.Grant(f.lanny.ID)
	list, err = f.svc.ListByOwner(ctx, asOperator(f.lanny), f.daniel.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_ = hidden
}

func TestResourceService_StorageErrorSurfaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)

	boom := errors.New("connection reset")
	f.resources.saveErr = boom

	_, _, err := f.svc.ToggleLike(ctx, asOperator(f.daniel), res.ID)
	require.Error(t, err)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, boom)
}

func TestResourceService_MissingOwnerDegradesToNoGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.createResource(t, f.daniel)

	// Owner record loss must not break owner-by-ID or published access
	delete(f.agents.agents, f.daniel.ID)

	_, _, err := f.svc.Get(ctx, asOperator(f.lanny), res.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Publish(ctx, asOperator(f.daniel), res.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Get(ctx, asOperator(f.lanny), res.ID)
	assert.NoError(t, err)
}

func TestResourceService_ClockInjection(t *testing.T) {
	fixed := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	resources := newFakeResourceStore()
	agents := newFakeAgentStore()
	daniel := newTestAgent("daniel@example.com")
	agents.agents[daniel.ID] = daniel

	svc := NewResourceService(&ResourceServiceOpts{
		Resources: resources,
		Agents:    agents,
		Sudo:      func() string { return sudoEmail },
		Clock:     func() time.Time { return fixed },
		Logger:    testLogger(),
	})

	res, err := svc.Create(context.Background(), asOperator(daniel), &CreateResourceRequest{
		Kind:      models.KindImage,
		MediaPath: "uploads/x.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, res.CreatedAt)

	updated, err := svc.Publish(context.Background(), asOperator(daniel), res.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	assert.Equal(t, fixed, *updated.PublishedAt)
}
