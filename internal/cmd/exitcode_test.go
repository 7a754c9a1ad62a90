package cmd

import (
	"testing"

	"github.com/anthropics/devac/internal/devac/devacerr"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"config", &devacerr.ConfigError{Detail: "bad"}, exitPrerequisiteFailure},
		{"parse", &devacerr.ParseError{Kind: devacerr.ParseSyntax}, exitParseOrStorageError},
		{"storage", &devacerr.StorageError{Kind: devacerr.StorageLockTimeout}, exitParseOrStorageError},
		{"hub", &devacerr.HubError{Kind: devacerr.HubUnknownRepo}, exitHubError},
		{"unrecognized", errPlain("boom"), exitPrerequisiteFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeForError(tt.err); got != tt.want {
				t.Errorf("exitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
