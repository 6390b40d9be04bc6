// Package runstore persists scenario runs in a local bbolt database.
//
// Each run is stored as one JSON record in the "runs" bucket, keyed by its
// run id. Run ids are time-ordered, so records list newest first without
// a secondary index.
package runstore
