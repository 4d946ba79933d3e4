package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGateway is an in-memory store with server-generated ids.
type fakeGateway struct {
	mu        sync.Mutex
	relations map[string][]RelationAttribute
	rows      map[string]map[string]Record
	nextID    int

	// failCreate makes Create fail for a collection
	failCreate map[string]error
	// failUpdate makes Update fail for a collection
	failUpdate map[string]error

	// calls records gateway writes in order, as "op collection id"
	calls []string
}

func newFakeGateway(relations map[string][]RelationAttribute) *fakeGateway {
	return &fakeGateway{
		relations:  relations,
		rows:       make(map[string]map[string]Record),
		failCreate: make(map[string]error),
		failUpdate: make(map[string]error),
	}
}

func (f *fakeGateway) DescribeRelations(ctx context.Context, collection string) ([]RelationAttribute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.relations[collection], nil
}

func (f *fakeGateway) Create(ctx context.Context, collection string, data Record) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failCreate[collection]; err != nil {
		return nil, err
	}

	// The store chooses identifiers; a stale id on the payload is ignored.
	f.nextID++
	id := fmt.Sprintf("%s-%d", collection, f.nextID)

	stored := CloneRecord(data)
	stored[IDField] = id

	if f.rows[collection] == nil {
		f.rows[collection] = make(map[string]Record)
	}
	f.rows[collection][id] = stored
	f.calls = append(f.calls, fmt.Sprintf("create %s %s", collection, id))

	return CloneRecord(stored), nil
}

func (f *fakeGateway) Update(ctx context.Context, collection string, id any, data Record) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failUpdate[collection]; err != nil {
		return nil, err
	}

	key, _ := id.(string)
	existing, ok := f.rows[collection][key]
	if !ok {
		return nil, nil
	}

	for k, v := range data {
		existing[k] = v
	}
	existing[IDField] = key
	f.calls = append(f.calls, fmt.Sprintf("update %s %s", collection, key))

	return CloneRecord(existing), nil
}

func (f *fakeGateway) rowCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[collection])
}

func (f *fakeGateway) row(collection, id string) Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[collection][id]
}

func newTestEngine(gw *fakeGateway) *Engine {
	return NewEngine(gw, zap.NewNop())
}

var articleRelations = map[string][]RelationAttribute{
	"articles": {
		{Name: "author", Target: "users"},
		{Name: "tags", Target: "tags"},
		{Name: AttrCreatedBy, Target: "users"},
		{Name: AttrUpdatedBy, Target: "users"},
	},
	"users": {},
	"tags": {
		{Name: AttrCreatedBy, Target: "users"},
		{Name: AttrUpdatedBy, Target: "users"},
	},
}

func TestReconcile_CreateWithoutID(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)
	actor := Actor{ID: "actor-1"}

	stored, err := engine.Reconcile(context.Background(), actor, "articles", Record{
		"title": "Hello",
	})

	require.NoError(t, err)
	assert.True(t, TruthyID(stored[IDField]))
	assert.Equal(t, 1, gw.rowCount("articles"))
}

func TestReconcile_AuditFieldsAlwaysOverwritten(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)
	actor := Actor{ID: "actor-1"}

	// User-supplied audit values are discardable input, never trusted.
	stored, err := engine.Reconcile(context.Background(), actor, "articles", Record{
		"title":       "Hello",
		AttrCreatedBy: "someone-else",
		AttrUpdatedBy: Record{"sneaky": "object"},
	})

	require.NoError(t, err)
	assert.Equal(t, "actor-1", stored[AttrCreatedBy])
	assert.Equal(t, "actor-1", stored[AttrUpdatedBy])
}

func TestReconcile_UpdateExistingID(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)
	actor := Actor{ID: "actor-1"}

	first, err := engine.Reconcile(context.Background(), actor, "articles", Record{"title": "v1"})
	require.NoError(t, err)
	id := first[IDField].(string)

	second, err := engine.Reconcile(context.Background(), actor, "articles", Record{
		IDField: id,
		"title": "v2",
	})

	require.NoError(t, err)
	assert.Equal(t, id, second[IDField])
	assert.Equal(t, 1, gw.rowCount("articles"), "update must not duplicate the row")
	assert.Equal(t, "v2", gw.row("articles", id)["title"])
}

func TestReconcile_UnknownIDFallsBackToCreate(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)
	actor := Actor{ID: "actor-1"}

	// A supplied id that matches no row is silently promoted to a create,
	// not treated as an error.
	stored, err := engine.Reconcile(context.Background(), actor, "articles", Record{
		IDField: "articles-999",
		"title": "ghost",
	})

	require.NoError(t, err)
	assert.NotEqual(t, "articles-999", stored[IDField])
	assert.Equal(t, 1, gw.rowCount("articles"))
	assert.Equal(t, []string{"create articles " + stored[IDField].(string)}, gw.calls)
}

func TestReconcile_SingleRelation(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)
	actor := Actor{ID: "actor-1"}

	stored, err := engine.Reconcile(context.Background(), actor, "articles", Record{
		"title":  "Hello",
		"author": Record{"name": "Ada"},
	})

	require.NoError(t, err)
	require.Equal(t, 1, gw.rowCount("users"))

	// The nested object is replaced by the stored identifier, and the
	// related record is persisted before the parent.
	authorID, ok := stored["author"].(string)
	require.True(t, ok, "author must be resolved to an identifier, got %T", stored["author"])
	assert.Equal(t, "Ada", gw.row("users", authorID)["name"])

	require.Len(t, gw.calls, 2)
	assert.Equal(t, "create users "+authorID, gw.calls[0])
}

func TestReconcile_ManyRelation(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)
	actor := Actor{ID: "actor-1"}

	stored, err := engine.Reconcile(context.Background(), actor, "articles", Record{
		"title": "Hello",
		"tags": []any{
			Record{"label": "go"},
			"tags-preexisting",
			Record{"label": "sql"},
		},
	})

	require.NoError(t, err)

	ids, ok := stored["tags"].([]any)
	require.True(t, ok)
	require.Len(t, ids, 3)

	// Order is preserved 1:1 with the input; scalar elements pass through
	// as identifiers that need no resolution.
	assert.Equal(t, "go", gw.row("tags", ids[0].(string))["label"])
	assert.Equal(t, "tags-preexisting", ids[1])
	assert.Equal(t, "sql", gw.row("tags", ids[2].(string))["label"])

	// Nested audit relations carry the actor too.
	assert.Equal(t, "actor-1", gw.row("tags", ids[0].(string))[AttrCreatedBy])
}

func TestReconcile_EmptySequenceStaysEmpty(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)

	stored, err := engine.Reconcile(context.Background(), Actor{ID: "a"}, "articles", Record{
		"title": "Hello",
		"tags":  []any{},
	})

	require.NoError(t, err)
	ids, ok := stored["tags"].([]any)
	require.True(t, ok, "empty sequence must resolve to an empty sequence, not nil or absent")
	assert.Empty(t, ids)
}

func TestReconcile_NullAndAbsentAndScalar(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)

	stored, err := engine.Reconcile(context.Background(), Actor{ID: "a"}, "articles", Record{
		"title":  "Hello",
		"author": nil,              // explicit "no relation"
		"tags":   "tags-42",        // already an identifier
	})

	require.NoError(t, err)
	value, present := stored["author"]
	assert.True(t, present)
	assert.Nil(t, value, "explicit null must survive, never be recursed into")
	assert.Equal(t, "tags-42", stored["tags"])
	assert.Equal(t, 0, gw.rowCount("users"))
	assert.Equal(t, 0, gw.rowCount("tags"))
}

func TestReconcile_DeepNesting(t *testing.T) {
	relations := map[string][]RelationAttribute{
		"articles": {{Name: "author", Target: "users"}},
		"users":    {{Name: "company", Target: "companies"}},
		"companies": {},
	}
	gw := newFakeGateway(relations)
	engine := newTestEngine(gw)

	stored, err := engine.Reconcile(context.Background(), Actor{ID: "a"}, "articles", Record{
		"title": "Deep",
		"author": Record{
			"name":    "Ada",
			"company": Record{"name": "Analytical Engines Ltd"},
		},
	})

	require.NoError(t, err)
	authorID := stored["author"].(string)
	companyID := gw.row("users", authorID)["company"].(string)
	assert.Equal(t, "Analytical Engines Ltd", gw.row("companies", companyID)["name"])

	// Bottom-up: company before user before article.
	require.Len(t, gw.calls, 3)
	assert.Equal(t, "create companies "+companyID, gw.calls[0])
	assert.Equal(t, "create users "+authorID, gw.calls[1])
}

func TestReconcile_NestedStoreFailure(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	storeErr := fmt.Errorf("users: name must be unique")
	gw.failCreate["users"] = storeErr
	engine := newTestEngine(gw)

	_, err := engine.Reconcile(context.Background(), Actor{ID: "a"}, "articles", Record{
		"title":  "Hello",
		"author": Record{"name": "Ada"},
	})

	require.Error(t, err)

	var rerr *ReconcileError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "articles", rerr.Collection)
	assert.ErrorIs(t, err, storeErr)

	// The parent must not have been written.
	assert.Equal(t, 0, gw.rowCount("articles"))
}

func TestReconcile_UpdateFailurePropagates(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)

	first, err := engine.Reconcile(context.Background(), Actor{ID: "a"}, "articles", Record{"title": "v1"})
	require.NoError(t, err)

	gw.failUpdate["articles"] = fmt.Errorf("connection lost")

	_, err = engine.Reconcile(context.Background(), Actor{ID: "a"}, "articles", Record{
		IDField: first[IDField],
		"title": "v2",
	})

	var rerr *ReconcileError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, err.Error(), "connection lost")
}

func TestReconcile_Idempotence(t *testing.T) {
	gw := newFakeGateway(articleRelations)
	engine := newTestEngine(gw)
	actor := Actor{ID: "actor-1"}

	stored, err := engine.Reconcile(context.Background(), actor, "articles", Record{
		"title":  "Hello",
		"author": Record{"name": "Ada"},
		"tags":   []any{Record{"label": "go"}},
	})
	require.NoError(t, err)

	// Re-importing the already-upserted record (ids assigned, relations
	// resolved) must update the same rows, not duplicate them.
	again, err := engine.Reconcile(context.Background(), actor, "articles", CloneRecord(stored))
	require.NoError(t, err)

	assert.Equal(t, stored[IDField], again[IDField])
	assert.Equal(t, 1, gw.rowCount("articles"))
	assert.Equal(t, 1, gw.rowCount("users"))
	assert.Equal(t, 1, gw.rowCount("tags"))
}

// decliningGateway wraps fakeGateway and declines writes to one collection,
// returning no record instead of an error.
type decliningGateway struct {
	*fakeGateway
	decline string
}

func (g *decliningGateway) Create(ctx context.Context, collection string, data Record) (Record, error) {
	if collection == g.decline {
		return nil, nil
	}
	return g.fakeGateway.Create(ctx, collection, data)
}

func TestReconcile_DeclinedSingleRelationStoresNull(t *testing.T) {
	gw := &decliningGateway{fakeGateway: newFakeGateway(articleRelations), decline: "users"}
	engine := NewEngine(gw, zap.NewNop())

	stored, err := engine.Reconcile(context.Background(), Actor{ID: "actor-1"}, "articles", Record{
		"title":  "Hello",
		"author": Record{"name": "Ada"},
	})

	require.NoError(t, err)

	// A nested record that resolved to no stored row leaves an explicit null
	// in the relation slot, never the unresolved object.
	value, present := stored["author"]
	assert.True(t, present)
	assert.Nil(t, value)
	assert.Equal(t, 1, gw.rowCount("articles"))
}

func TestReconcile_DeclinedSequenceElementStoresNull(t *testing.T) {
	gw := &decliningGateway{fakeGateway: newFakeGateway(articleRelations), decline: "tags"}
	engine := NewEngine(gw, zap.NewNop())

	stored, err := engine.Reconcile(context.Background(), Actor{ID: "actor-1"}, "articles", Record{
		"title": "Hello",
		"tags":  []any{Record{"label": "go"}, "tags-preexisting"},
	})

	require.NoError(t, err)

	// The slot stays 1:1 with the input: a null for the declined element,
	// the scalar passed through.
	assert.Equal(t, []any{nil, "tags-preexisting"}, stored["tags"])
}
