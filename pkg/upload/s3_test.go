package upload

import (
	"testing"

	"github.com/specwatch/specwatch/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestResolvePrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		runID  string
		want   string
	}{
		{
			name:   "default prefix",
			prefix: "",
			runID:  "run-1700000000000",
			want:   "specwatch/runs/run-1700000000000",
		},
		{
			name:   "custom prefix",
			prefix: "ci/memory",
			runID:  "run-42",
			want:   "ci/memory/run-42",
		},
		{
			name:   "trailing slash stripped",
			prefix: "ci/memory/",
			runID:  "run-42",
			want:   "ci/memory/run-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &s3Uploader{
				cfg: &config.S3UploadConfig{Prefix: tt.prefix},
			}
			got := u.resolvePrefix(tt.runID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantPrefix string
	}{
		{
			name:       "json snapshot",
			path:       ".specwatch/snapshot.json",
			wantPrefix: "application/json",
		},
		{
			name:       "text report",
			path:       ".specwatch/report.txt",
			wantPrefix: "text/plain",
		},
		{
			name:       "no extension",
			path:       ".specwatch/Makefile",
			wantPrefix: "application/octet-stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectContentType(tt.path)
			assert.Contains(t, got, tt.wantPrefix)
		})
	}
}
