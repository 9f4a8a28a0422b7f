package dataset

import "context"

// Source loads one snapshot of the five source tables. Implementations read
// from a CSV directory, a Postgres database, or an S3 bucket; consumers only
// depend on this interface so analytics code can be fed synthetic in-memory
// tables in tests.
type Source interface {
	Load(ctx context.Context) (*Tables, error)
}
