package cmd

import (
	"errors"

	"github.com/anthropics/devac/internal/devac/devacerr"
)

// Exit codes per spec's CLI surface (§6): 0 success; 1 prerequisite failure;
// 2 parse/storage error; 3 hub error.
const (
	exitSuccess             = 0
	exitPrerequisiteFailure = 1
	exitParseOrStorageError = 2
	exitHubError            = 3
)

// exitCodeForError maps a command's returned error to the process exit code
// spec's CLI surface names. Unrecognized errors fall back to the
// prerequisite-failure code since they most often originate from flag
// parsing or missing config rather than the graph pipeline itself.
func exitCodeForError(err error) int {
	if err == nil {
		return exitSuccess
	}

	var configErr *devacerr.ConfigError
	if errors.As(err, &configErr) {
		return exitPrerequisiteFailure
	}

	var parseErr *devacerr.ParseError
	if errors.As(err, &parseErr) {
		return exitParseOrStorageError
	}

	var storageErr *devacerr.StorageError
	if errors.As(err, &storageErr) {
		return exitParseOrStorageError
	}

	var hubErr *devacerr.HubError
	if errors.As(err, &hubErr) {
		return exitHubError
	}

	return exitPrerequisiteFailure
}
