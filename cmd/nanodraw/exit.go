package main

import (
	"github.com/kbukum/nanodraw/draw"
	apperrors "github.com/kbukum/nanodraw/errors"
	"github.com/kbukum/nanodraw/httpclient"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitProvider   = 3
	ExitNetwork    = 4
	ExitPending    = 5
)

// exitCodeFor maps an error returned by a command to a process exit code.
// ExitPending means the task may still finish; check it with "nanodraw result".
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case apperrors.HasCode(err, apperrors.ErrCodeInvalidInput),
		apperrors.HasCode(err, apperrors.ErrCodeMissingField):
		return ExitValidation
	case draw.MayStillComplete(err):
		return ExitPending
	case draw.IsGenerationFailed(err),
		apperrors.HasCode(err, apperrors.ErrCodeResultLookup),
		httpclient.IsAuth(err),
		httpclient.IsRateLimit(err):
		return ExitProvider
	case apperrors.HasCode(err, apperrors.ErrCodeNetwork),
		apperrors.HasCode(err, apperrors.ErrCodeStreamRead):
		return ExitNetwork
	}
	if _, ok := httpclient.AsError(err); ok {
		return ExitNetwork
	}
	return ExitFailure
}
