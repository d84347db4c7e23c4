// Package dataset holds the penguin table the dashboard filters, and the
// loaders that fill it once at startup.
//
// # Overview
//
// The dataset is read-only for the whole life of the process. It is loaded
// once, validated (at least one record, the five display columns present)
// and then shared by reference with every session's filter engine. There is
// no update operation, so no locking is needed on the read path.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│        Filter engines (per session) │
//	└─────────────────────────────────────┘
//	                 │ read-only *Dataset
//	                 ▼
//	┌─────────────────────────────────────┐
//	│              Dataset                │
//	│   records, species order, mass range│
//	└─────────────────────────────────────┘
//	                 ▲
//	    ┌────────────┼────────────┬────────────┐
//	┌────────┐  ┌────────┐  ┌──────────┐  ┌────────┐
//	│  CSV   │  │ SQLite │  │ Postgres │  │   S3   │
//	│ file / │  │ table  │  │  table   │  │ object │
//	│embedded│  └────────┘  └──────────┘  └────────┘
//	└────────┘
//
// # Sources
//
// Load picks a reader from the source string:
//
//   - "" or "embedded:" reads the small sample compiled into the binary
//   - a path or file:// URL reads a CSV file with a header row
//   - sqlite:// reads the "penguins" table through modernc.org/sqlite
//   - postgres:// reads the "penguins" table through pgx
//   - s3://bucket/key reads a CSV object using the default AWS credential chain
//
// Every source converts cells with the same rules: columns are matched by
// name, "NA", empty cells and SQL NULL become missing values (NaN for
// numbers), and a cell that is present but not numeric is an error.
//
// # Missing values
//
// Missing masses never satisfy a "less than" threshold, and means skip
// missing values, which mirrors how the penguins data is usually analysed.
//
// # Example
//
//	ds, err := dataset.Load(ctx, "data/penguins.csv", dataset.WithLogger(logger))
//	if err != nil {
//	    logger.Fatal("dataset unavailable", zap.Error(err))
//	}
//	fmt.Println(ds.Len(), ds.Species())
package dataset
