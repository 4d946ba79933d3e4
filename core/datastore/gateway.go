package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"content-importer/core/reconcile"
	"content-importer/core/schema"
	"content-importer/core/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Gateway is the GORM-backed implementation of reconcile.Gateway.
type Gateway struct {
	db       *gorm.DB
	registry *schema.Registry
	logger   *zap.Logger
}

// NewGateway creates a new datastore gateway.
func NewGateway(db *gorm.DB, registry *schema.Registry, logger *zap.Logger) *Gateway {
	return &Gateway{
		db:       db,
		registry: registry,
		logger:   logger,
	}
}

// DescribeRelations returns the ordered relation attributes of a collection
// from the schema registry.
func (g *Gateway) DescribeRelations(ctx context.Context, collection string) ([]reconcile.RelationAttribute, error) {
	return g.registry.Relations(collection)
}

// Create inserts a new row for the collection and returns the stored record.
// A payload without a usable id gets a generated UUID; a supplied id is kept
// as-is.
func (g *Gateway) Create(ctx context.Context, collection string, data reconcile.Record) (reconcile.Record, error) {
	col, err := g.registry.Collection(collection)
	if err != nil {
		return nil, err
	}

	row := encodeRow(data)
	if !reconcile.TruthyID(row[reconcile.IDField]) {
		row[reconcile.IDField] = uuid.NewString()
	}

	if err := g.db.WithContext(ctx).Table(col.Table).Create(row).Error; err != nil {
		return nil, &StoreError{Op: "create", Collection: collection, Err: err}
	}

	g.logger.Debug("record created",
		zap.String("collection", collection),
		zap.String("id", utils.ToString(row[reconcile.IDField])),
	)

	stored := reconcile.CloneRecord(data)
	stored[reconcile.IDField] = row[reconcile.IDField]
	return stored, nil
}

// Update modifies the row matching id and returns the stored record as read
// back from the database. A (nil, nil) return means no row matched the id.
func (g *Gateway) Update(ctx context.Context, collection string, id any, data reconcile.Record) (reconcile.Record, error) {
	col, err := g.registry.Collection(collection)
	if err != nil {
		return nil, err
	}

	row := encodeRow(data)
	// The id column is the match key, never part of the SET clause.
	delete(row, reconcile.IDField)

	result := g.db.WithContext(ctx).
		Table(col.Table).
		Where("id = ?", id).
		Updates(row)

	if result.Error != nil {
		return nil, &StoreError{Op: "update", Collection: collection, Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return g.selectRow(ctx, collection, col.Table, id)
}

// selectRow reads one row back into a record, decoding JSON-encoded relation
// columns on the way out.
func (g *Gateway) selectRow(ctx context.Context, collection, table string, id any) (reconcile.Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = ?", table)
	rows, err := g.db.WithContext(ctx).Raw(query, id).Rows()
	if err != nil {
		return nil, &StoreError{Op: "select", Collection: collection, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &StoreError{Op: "select", Collection: collection, Err: err}
	}

	if !rows.Next() {
		return nil, &StoreError{Op: "select", Collection: collection, Err: fmt.Errorf("row %v vanished after update", id)}
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, &StoreError{Op: "select", Collection: collection, Err: err}
	}

	record := make(reconcile.Record, len(columns))
	for i, name := range columns {
		record[name] = decodeValue(values[i])
	}
	return record, nil
}

// encodeRow flattens a record into a writable row: sequences and nested maps
// become JSON-encoded strings, scalars pass through.
func encodeRow(data reconcile.Record) map[string]any {
	row := make(map[string]any, len(data))
	for key, value := range data {
		switch value.(type) {
		case []any, []reconcile.Record, reconcile.Record:
			encoded, err := json.Marshal(value)
			if err != nil {
				// Marshal of maps/slices of JSON-decoded values cannot fail;
				// store the raw string representation if it somehow does.
				row[key] = utils.ToString(value)
				continue
			}
			row[key] = string(encoded)
		default:
			row[key] = value
		}
	}
	return row
}

// decodeValue converts a scanned column value back to a record value:
// byte slices become strings, and strings that look like JSON documents are
// decoded back into sequences/maps.
func decodeValue(value any) any {
	s, isText := value.([]byte)
	var text string
	if isText {
		text = string(s)
	} else if str, ok := value.(string); ok {
		text = str
		isText = true
	}
	if !isText {
		return value
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
			return decoded
		}
	}
	return text
}
