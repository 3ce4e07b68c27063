package upload

import "context"

// Uploader publishes run artifacts to remote storage.
type Uploader interface {
	// Preflight verifies that the remote storage is reachable and writable.
	// Writes a small test object to the bucket to fail fast on misconfiguration.
	Preflight(ctx context.Context) error

	// UploadRun uploads the given files under prefix + "/" + runID, keyed
	// by their basenames.
	UploadRun(ctx context.Context, runID string, paths ...string) error
}
