package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupportedSource is returned for a source string no loader understands
var ErrUnsupportedSource = errors.New("unsupported dataset source")

//go:embed sample.csv
var sampleCSV []byte

// EmbeddedSource names the sample table compiled into the binary
const EmbeddedSource = "embedded:"

const defaultTable = "penguins"

// Option configures Load.
type Option func(*loader)

type loader struct {
	logger *zap.Logger
	table  string
	s3     S3Config
	getter ObjectGetter
}

// WithLogger sets the logger used to report what was loaded.
func WithLogger(l *zap.Logger) Option {
	return func(ld *loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithTable sets the table read by the sqlite and postgres sources.
func WithTable(name string) Option {
	return func(ld *loader) {
		if name != "" {
			ld.table = name
		}
	}
}

// WithS3Config sets the region and endpoint used for s3:// sources.
func WithS3Config(cfg S3Config) Option {
	return func(ld *loader) { ld.s3 = cfg }
}

// WithObjectGetter replaces the S3 client, mostly for tests.
func WithObjectGetter(g ObjectGetter) Option {
	return func(ld *loader) { ld.getter = g }
}

// Load reads the dataset named by source exactly once.
//
// Source forms:
//
//	""  or "embedded:"        built-in sample table
//	path/to/file.csv          CSV file (also "file://path")
//	sqlite://path/to/db       table in a SQLite database
//	postgres://user@host/db   table in Postgres (also "postgresql://")
//	s3://bucket/key.csv       CSV object in S3 or an S3-compatible store
//
// Any error is meant to be fatal to the caller: the filter engine assumes a
// valid, non-empty Dataset.
func Load(ctx context.Context, source string, opts ...Option) (*Dataset, error) {
	ld := &loader{logger: zap.NewNop(), table: defaultTable}
	for _, opt := range opts {
		opt(ld)
	}

	records, err := ld.read(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load dataset %q: %w", describe(source), err)
	}

	ds, err := New(records)
	if err != nil {
		return nil, fmt.Errorf("load dataset %q: %w", describe(source), err)
	}

	ld.logger.Info("dataset loaded",
		zap.String("source", describe(source)),
		zap.Int("records", ds.Len()),
		zap.Strings("species", ds.Species()))
	return ds, nil
}

func (ld *loader) read(ctx context.Context, source string) ([]Record, error) {
	switch {
	case source == "" || source == EmbeddedSource:
		return ParseCSV(bytes.NewReader(sampleCSV))
	case strings.HasPrefix(source, "sqlite://"):
		return ld.readSQL(ctx, driverSQLite, strings.TrimPrefix(source, "sqlite://"))
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		return ld.readSQL(ctx, driverPostgres, source)
	case strings.HasPrefix(source, "s3://"):
		return ld.readS3(ctx, source)
	case strings.HasPrefix(source, "file://"):
		return readFile(strings.TrimPrefix(source, "file://"))
	case strings.Contains(source, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	default:
		return readFile(source)
	}
}

func readFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

// describe strips credentials from a source before it reaches logs.
func describe(source string) string {
	if source == "" {
		return EmbeddedSource
	}
	scheme, rest, ok := strings.Cut(source, "://")
	if !ok {
		return source
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
