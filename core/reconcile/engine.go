package reconcile

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine performs recursive record reconciliation against a Gateway.
type Engine struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewEngine creates a new reconciliation engine.
func NewEngine(gateway Gateway, logger *zap.Logger) *Engine {
	return &Engine{
		gateway: gateway,
		logger:  logger,
	}
}

// Reconcile resolves every relation field of record to stored identifiers,
// creating or updating related records as needed, then upserts the record
// itself and returns the stored row. The record is mutated in place: relation
// fields are replaced by identifiers and audit fields by the actor's id.
//
// Any nested resolution or store-write failure comes back as a single
// ReconcileError wrapping the root cause. Nested writes that already committed
// are not undone.
//
// Cyclic relation graphs are not guarded against; a self-referential nested
// payload recurses until the context is cancelled or the stack gives out.
func (e *Engine) Reconcile(ctx context.Context, actor Actor, collection string, record Record) (Record, error) {
	stored, err := e.reconcile(ctx, actor, collection, record)
	if err != nil {
		return nil, &ReconcileError{Collection: collection, Err: err}
	}
	return stored, nil
}

// reconcile is the unwrapped recursion body: resolve relations, then upsert.
func (e *Engine) reconcile(ctx context.Context, actor Actor, collection string, record Record) (Record, error) {
	relations, err := e.gateway.DescribeRelations(ctx, collection)
	if err != nil {
		return nil, err
	}

	// Fan out over relation attributes; each resolved identifier lands in its
	// own slot so no goroutine touches the record map while siblings run.
	// The map is rewritten only after the join.
	resolved := make([]any, len(relations))
	pending := make([]bool, len(relations))

	g, gctx := errgroup.WithContext(ctx)

	for i, rel := range relations {
		if rel.IsAudit() {
			// Audit relations always carry the acting user's identifier.
			// Whatever the input supplied is discarded.
			record[rel.Name] = actor.ID
			continue
		}

		kind, value := classifyRelation(record, rel.Name)
		switch kind {
		case relAbsent, relNull, relScalar:
			// Nothing to resolve. Explicit nulls and already-resolved
			// identifiers pass through untouched.

		case relSingle:
			pending[i] = true
			nested := value.(Record)
			i, rel := i, rel
			g.Go(func() error {
				child, err := e.reconcile(gctx, actor, rel.Target, nested)
				if err != nil {
					return err
				}
				if child != nil {
					resolved[i] = child[IDField]
				}
				return nil
			})

		case relMany:
			pending[i] = true
			elements := value.([]any)
			i, rel := i, rel
			g.Go(func() error {
				ids, err := e.reconcileSequence(gctx, actor, rel.Target, elements)
				if err != nil {
					return err
				}
				resolved[i] = ids
				return nil
			})
		}
	}

	// A record's own upsert must never be issued while any of its relation
	// fields is still an unresolved placeholder.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, rel := range relations {
		if pending[i] {
			record[rel.Name] = resolved[i]
		}
	}

	return e.upsert(ctx, collection, record)
}

// reconcileSequence resolves every element of a multi-valued relation
// concurrently, preserving input order 1:1. Elements that are nested records
// are reconciled to identifiers; scalar elements are taken as identifiers
// already. An empty sequence resolves to an empty sequence, never nil.
func (e *Engine) reconcileSequence(ctx context.Context, actor Actor, target string, elements []any) ([]any, error) {
	ids := make([]any, len(elements))

	g, gctx := errgroup.WithContext(ctx)
	for i, element := range elements {
		nested, ok := element.(Record)
		if !ok {
			ids[i] = element
			continue
		}
		i := i
		g.Go(func() error {
			child, err := e.reconcile(gctx, actor, target, nested)
			if err != nil {
				return err
			}
			if child != nil {
				ids[i] = child[IDField]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// upsert persists a record whose relations are fully resolved. A truthy id
// attempts an update first; an update that matches no row falls back to
// create, so a supplied id unknown to the store is silently promoted to a
// create rather than treated as an error. The fallback payload is passed
// through unchanged, stale id included.
func (e *Engine) upsert(ctx context.Context, collection string, record Record) (Record, error) {
	id := record[IDField]
	if !TruthyID(id) {
		return e.gateway.Create(ctx, collection, record)
	}

	stored, err := e.gateway.Update(ctx, collection, id, record)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return e.gateway.Create(ctx, collection, record)
	}
	return stored, nil
}
