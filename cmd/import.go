package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"content-importer/core/config"
	"content-importer/core/database"
	"content-importer/core/datastore"
	"content-importer/core/logger"
	"content-importer/core/reconcile"
	"content-importer/core/schema"
	"content-importer/core/storage"
	"content-importer/feature/importer"
	"content-importer/feature/importer/models"
	"content-importer/feature/importer/parser"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the import command
	importCollection string
	importFormat     string
	importFile       string
	importObject     string
	importPrefix     string
	importActor      string
	importArchive    bool
)

// importCmd runs a one-shot batch import from a local file or from storage
// objects.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV/JSON document into a collection",
	Long: `Import CSV or JSON documents into a collection, recursively upserting
nested relation data.

Each top-level record is reconciled independently: a failing row is reported
and skipped, the rest of the batch continues. Related records created before
a row failed stay in the database.

Examples:
  # Import a local JSON file
  import --collection articles --file articles.json --actor admin

  # Import a CSV object straight from the configured bucket
  import --collection articles --object exports/articles.csv --actor admin

  # Import every pending object under a prefix, archiving what imported clean
  import --collection articles --prefix exports/ --archive --actor admin`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importCollection, "collection", "", "Target collection slug (required)")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: csv or json (default: inferred from the file extension)")
	importCmd.Flags().StringVar(&importFile, "file", "", "Path of the local document to import")
	importCmd.Flags().StringVar(&importObject, "object", "", "Object name in the configured storage bucket to import")
	importCmd.Flags().StringVar(&importPrefix, "prefix", "", "Import every object under this prefix in the configured bucket")
	importCmd.Flags().BoolVar(&importArchive, "archive", false, "Move fully imported storage objects to the archive bucket")
	importCmd.Flags().StringVar(&importActor, "actor", "", "Identifier of the importing user (required)")
	_ = importCmd.MarkFlagRequired("collection")
	_ = importCmd.MarkFlagRequired("actor")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	selected := 0
	for _, set := range []bool{importFile != "", importObject != "", importPrefix != ""} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return fmt.Errorf("exactly one of --file, --object or --prefix is required")
	}
	if importArchive && importFile != "" {
		return fmt.Errorf("--archive only applies to storage imports")
	}

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Load collection schemas
	registry, err := schema.LoadFile(cfg.Schema.Path)
	if err != nil {
		return fmt.Errorf("failed to load schema document: %w", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	gateway := datastore.NewGateway(db, registry, l)
	svc := importer.NewService(reconcile.NewEngine(gateway, l), l)

	if importFile != "" {
		raw, err := os.ReadFile(importFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", importFile, err)
		}
		report, err := importDocument(ctx, svc, l, raw, importFile)
		if err != nil {
			return err
		}
		if report.Failed > 0 {
			return fmt.Errorf("%d of %d rows failed", report.Failed, report.Total)
		}
		return nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	objects := []string{importObject}
	if importPrefix != "" {
		objects, err = listObjects(ctx, client, cfg.Storage.Bucket, importPrefix)
		if err != nil {
			return err
		}
		if len(objects) == 0 {
			return fmt.Errorf("no objects under prefix %s", importPrefix)
		}
	}

	total, failed := 0, 0
	clean := make([]document, 0, len(objects))
	for _, object := range objects {
		raw, err := objectBytes(ctx, client, cfg.Storage.Bucket, object)
		if err != nil {
			return err
		}
		report, err := importDocument(ctx, svc, l, raw, object)
		if err != nil {
			return err
		}
		total += report.Total
		failed += report.Failed
		if report.Failed == 0 {
			clean = append(clean, document{name: object, raw: raw})
		}
	}

	if importArchive {
		if err := archiveDocuments(ctx, client, cfg.Storage.Bucket, clean); err != nil {
			return err
		}
		l.Info("Archived imported objects", zap.Int("objects", len(clean)))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rows failed", failed, total)
	}
	return nil
}

// document pairs one storage object with its raw content.
type document struct {
	name string
	raw  []byte
}

// importDocument runs one batch import and logs its report.
func importDocument(ctx context.Context, svc *importer.Service, l *zap.Logger, raw []byte, source string) (*models.ImportReport, error) {
	format := importFormat
	if format == "" {
		format = inferFormat(source)
	}

	l.Info("Importing document",
		zap.String("collection", importCollection),
		zap.String("source", source),
		zap.String("format", format),
	)

	report, err := svc.Import(ctx, raw, importer.ImportOptions{
		Collection: importCollection,
		Format:     format,
		Actor:      reconcile.Actor{ID: importActor},
	})
	if err != nil {
		return nil, fmt.Errorf("import of %s failed: %w", source, err)
	}

	l.Info("Import report",
		zap.String("source", source),
		zap.Int("total", report.Total),
		zap.Int("imported", report.Total-report.Failed),
		zap.Int("failed", report.Failed),
	)
	for _, failure := range report.Failures {
		l.Warn("Row failed", zap.String("error", failure.Error), zap.Any("data", failure.Data))
	}
	return report, nil
}

// objectBytes downloads one storage object into memory.
func objectBytes(ctx context.Context, client storage.Client, bucket, object string) ([]byte, error) {
	reader, err := client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", object, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", object, err)
	}
	return raw, nil
}

// listObjects collects the object names under a prefix, in listing order.
func listObjects(ctx context.Context, client storage.Client, bucket, prefix string) ([]string, error) {
	var names []string
	for info := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, info.Err)
		}
		names = append(names, info.Key)
	}
	return names, nil
}

// archiveDocuments moves fully imported documents into the archive bucket
// (<bucket>-archive, created on first use) so the source bucket only holds
// pending imports. Objects with failed rows stay behind for correction and
// re-submission.
func archiveDocuments(ctx context.Context, client storage.Client, bucket string, docs []document) error {
	if len(docs) == 0 {
		return nil
	}

	archive := bucket + "-archive"
	exists, err := client.BucketExists(ctx, archive)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", archive, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, archive, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", archive, err)
		}
	}

	for _, doc := range docs {
		_, err := client.PutObject(ctx, archive, doc.name, bytes.NewReader(doc.raw), int64(len(doc.raw)), minio.PutObjectOptions{})
		if err != nil {
			return fmt.Errorf("failed to archive %s: %w", doc.name, err)
		}
	}

	// A single removal skips the bulk channel machinery.
	if len(docs) == 1 {
		if err := client.RemoveObject(ctx, bucket, docs[0].name, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove %s after archiving: %w", docs[0].name, err)
		}
		return nil
	}

	removals := make(chan minio.ObjectInfo, len(docs))
	for _, doc := range docs {
		removals <- minio.ObjectInfo{Key: doc.name}
	}
	close(removals)

	for rerr := range client.RemoveObjects(ctx, bucket, removals, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			return fmt.Errorf("failed to remove %s after archiving: %w", rerr.ObjectName, rerr.Err)
		}
	}
	return nil
}

// inferFormat picks the parser format from a file extension, defaulting to
// JSON.
func inferFormat(source string) string {
	if strings.EqualFold(filepath.Ext(source), ".csv") {
		return parser.FormatCSV
	}
	return parser.FormatJSON
}
