package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mentor_sync/internal/dao/mysql"
	"mentor_sync/internal/infrastructure/mq"
	"mentor_sync/internal/model"
	"mentor_sync/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocuments 内存版 DocumentRepository
type fakeDocuments struct {
	mu   sync.Mutex
	rows map[string]model.Document
	gets int
	fail bool
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{rows: make(map[string]model.Document)}
}

func (f *fakeDocuments) FindByID(collection, docID string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.fail {
		return nil, errorx.New(errorx.CodeDBError, "db down")
	}
	row, ok := f.rows[collection+"/"+docID]
	if !ok {
		return nil, errorx.ErrNotFound
	}
	return &row, nil
}

func (f *fakeDocuments) FindByKey(collection, key string) ([]model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errorx.New(errorx.CodeDBError, "db down")
	}
	var out []model.Document
	for _, row := range f.rows {
		if row.Collection == collection && strings.Contains(row.Keys, "|"+key+"|") {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeDocuments) Upsert(doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errorx.New(errorx.CodeDBError, "db down")
	}
	doc.UpdatedAt = time.Now()
	f.rows[doc.Collection+"/"+doc.DocID] = *doc
	return nil
}

type fakeStore struct {
	docs *fakeDocuments
}

func (s fakeStore) Document() mysql.DocumentRepository { return s.docs }

func (s fakeStore) Transaction(fn func(tx Store) error) error { return fn(s) }

// fakeCache 默认同步执行异步任务；hold 为 true 时任务排队，由 runHeld 执行
type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
	failGet bool
	hold    bool
	held    []func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return "", errors.New("redis down")
	}
	return c.values[key], nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *fakeCache) SubmitTask(action func()) {
	c.mu.Lock()
	if c.hold {
		c.held = append(c.held, action)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	action()
}

func (c *fakeCache) runHeld() {
	c.mu.Lock()
	tasks := c.held
	c.held = nil
	c.hold = false
	c.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

func (c *fakeCache) value(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

type fixture struct {
	svc    *Service
	docs   *fakeDocuments
	cache  *fakeCache
	events *mq.ChannelPublisher
}

func newFixture() *fixture {
	docs := newFakeDocuments()
	cache := newFakeCache()
	events := mq.NewChannelPublisher(16)
	svc := NewService(fakeStore{docs: docs}, cache, events)
	seq := 0
	svc.newID = func() string {
		seq++
		return "sf-" + string(rune('0'+seq))
	}
	return &fixture{svc: svc, docs: docs, cache: cache, events: events}
}

func TestPutThenGetUsesCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.Put(ctx, "profiles", "u1", []string{"u1"}, json.RawMessage(`{"userId":"u1"}`)))
	ev := <-f.events.Events()
	assert.Equal(t, "create", ev.Op)
	assert.Equal(t, "profiles", ev.Collection)

	doc, err := f.svc.Get(ctx, "profiles", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.ID)
	assert.Equal(t, []string{"u1"}, doc.Keys)
	assert.JSONEq(t, `{"userId":"u1"}`, string(doc.Data))
	gets := f.docs.gets

	// 第二次命中缓存
	_, err = f.svc.Get(ctx, "profiles", "u1")
	require.NoError(t, err)
	assert.Equal(t, gets, f.docs.gets)
}

func TestPutInvalidatesCacheAndReportsOverwrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.Put(ctx, "meetings", "m1", nil, json.RawMessage(`{"title":"a"}`)))
	<-f.events.Events()
	_, err := f.svc.Get(ctx, "meetings", "m1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Put(ctx, "meetings", "m1", nil, json.RawMessage(`{"title":"b"}`)))
	ev := <-f.events.Events()
	assert.Equal(t, "put", ev.Op)
	assert.Contains(t, f.cache.deleted, "doc:meetings:m1")

	doc, err := f.svc.Get(ctx, "meetings", "m1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"b"}`, string(doc.Data))
}

func TestGetMissingIsNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), "profiles", "nobody")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestGetFallsBackToDBWhenCacheFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.Put(ctx, "profiles", "u1", nil, json.RawMessage(`{}`)))
	f.cache.failGet = true

	doc, err := f.svc.Get(ctx, "profiles", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.ID)
}

func TestCreateInjectsServerID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, err := f.svc.Create(ctx, "messages", []string{"a_b"}, json.RawMessage(`{"id":"local","content":"Hello!"}`))
	require.NoError(t, err)
	assert.Equal(t, "sf-1", id)

	docs, err := f.svc.Query(ctx, "messages", "a_b")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{"id":"sf-1","content":"Hello!"}`, string(docs[0].Data))
}

func TestCreateRejectsNonObject(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), "messages", nil, json.RawMessage(`[1,2]`))
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestQueryMatchesAnyKey(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.svc.Put(ctx, "conversations", "a_b", []string{"a", "b"}, json.RawMessage(`{}`)))
	require.NoError(t, f.svc.Put(ctx, "conversations", "a_c", []string{"a", "c"}, json.RawMessage(`{}`)))

	docs, err := f.svc.Query(ctx, "conversations", "b")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a_b", docs[0].ID)

	docs, err = f.svc.Query(ctx, "conversations", "a")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestStorageFailureIsServerBusy(t *testing.T) {
	f := newFixture()
	f.docs.fail = true
	err := f.svc.Put(context.Background(), "profiles", "u1", nil, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, errorx.ErrServerBusy)

	_, err = f.svc.Query(context.Background(), "profiles", "u1")
	assert.ErrorIs(t, err, errorx.ErrServerBusy)
}

func TestLateRefillDoesNotResurrectOverwrittenDocument(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.Put(ctx, "meetings", "m1", nil, json.RawMessage(`{"title":"a"}`)))
	<-f.events.Events()

	// 读到旧文档，回填任务还在排队
	f.cache.hold = true
	doc, err := f.svc.Get(ctx, "meetings", "m1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"a"}`, string(doc.Data))

	require.NoError(t, f.svc.Put(ctx, "meetings", "m1", nil, json.RawMessage(`{"title":"b"}`)))
	<-f.events.Events()
	f.cache.runHeld()
	assert.Empty(t, f.cache.value("doc:meetings:m1"))

	doc, err = f.svc.Get(ctx, "meetings", "m1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"b"}`, string(doc.Data))
	assert.NotEmpty(t, f.cache.value("doc:meetings:m1"))
}

func TestWriteInvalidatesCacheSynchronously(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.Put(ctx, "profiles", "u1", nil, json.RawMessage(`{"v":1}`)))
	<-f.events.Events()
	_, err := f.svc.Get(ctx, "profiles", "u1")
	require.NoError(t, err)
	require.NotEmpty(t, f.cache.value("doc:profiles:u1"))

	f.cache.hold = true
	require.NoError(t, f.svc.Put(ctx, "profiles", "u1", nil, json.RawMessage(`{"v":2}`)))
	<-f.events.Events()
	assert.Empty(t, f.cache.value("doc:profiles:u1"))
	f.cache.runHeld()
}

func TestKeysWithSeparatorAreRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.svc.Put(ctx, "profiles", "u1", []string{"a|b"}, json.RawMessage(`{}`))
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	_, err = f.svc.Create(ctx, "profiles", []string{""}, json.RawMessage(`{}`))
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	_, err = f.svc.Query(ctx, "profiles", "a|b")
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	assert.Empty(t, f.docs.rows)
}

func TestRefillGuardSkipsAfterWrite(t *testing.T) {
	g := newRefillGuard(time.Minute)
	seen := g.snapshot("k")
	g.written("k", func() {})

	ran := false
	assert.False(t, g.refill("k", seen, func() { ran = true }))
	assert.False(t, ran)
	assert.True(t, g.refill("k", g.snapshot("k"), func() { ran = true }))
	assert.True(t, ran)
}
