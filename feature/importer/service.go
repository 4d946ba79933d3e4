package importer

import (
	"context"

	"content-importer/core/reconcile"
	"content-importer/core/utils"
	"content-importer/feature/importer/models"
	"content-importer/feature/importer/parser"

	"go.uber.org/zap"
)

// ImportOptions configures one import call.
type ImportOptions struct {
	// Collection is the slug of the target collection.
	Collection string

	// Format is the input format: parser.FormatCSV or parser.FormatJSON.
	Format string

	// Actor is the importing user.
	Actor reconcile.Actor
}

// Service handles import operations.
type Service struct {
	engine *reconcile.Engine
	logger *zap.Logger
}

// NewService creates a new importer service.
func NewService(engine *reconcile.Engine, logger *zap.Logger) *Service {
	return &Service{
		engine: engine,
		logger: logger,
	}
}

// Import parses a raw document and reconciles every record against the target
// collection. A parse failure aborts the whole call before any record is
// processed; reconciliation failures of individual records end up in the
// report instead.
func (s *Service) Import(ctx context.Context, raw []byte, opts ImportOptions) (*models.ImportReport, error) {
	records, err := parser.Parse(opts.Format, raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting batch import",
		zap.String("collection", opts.Collection),
		zap.String("format", opts.Format),
		zap.String("actor", utils.ToString(opts.Actor.ID)),
		zap.Int("records", len(records)),
	)

	report := s.engine.ImportBatch(ctx, records, reconcile.BatchOptions{
		Collection: opts.Collection,
		Actor:      opts.Actor,
	})

	s.logger.Info("batch import finished",
		zap.String("collection", opts.Collection),
		zap.Int("records", len(records)),
		zap.Int("failed", len(report.Failures)),
	)

	return models.NewImportReport(len(records), report), nil
}
