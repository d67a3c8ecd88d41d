package draw

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	apperrors "github.com/kbukum/nanodraw/errors"
)

const (
	msgGenerationFailed  = "generation failed"
	msgPrematureEnd      = "stream ended before a completion signal was received; the image may still be generating, check the result later or retry"
	msgNetwork           = "network connection error, check the connection and retry"
	msgStreamInterrupted = "connection interrupted; the image may still be generating, check the result later or retry"
	msgStreamRead        = "failed to read generation stream"
	msgLookupFailed      = "result lookup failed"
	msgPollExhausted     = "the image is still generating, check the result later"
)

func generationFailed(ev *Event) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeGenerationFailed, ev.FailureMessage(), http.StatusBadGateway).
		WithDetail("id", ev.ID).
		WithDetail("status", ev.Status).
		WithDetail("progress", ev.Progress)
}

func prematureEnd() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeStreamIncomplete, msgPrematureEnd, http.StatusGatewayTimeout)
}

func lookupFailed(id, msg string, code int) *apperrors.AppError {
	if msg == "" {
		msg = msgLookupFailed
	}
	return apperrors.New(apperrors.ErrCodeResultLookup, msg, http.StatusBadGateway).
		WithDetail("id", id).
		WithDetail("code", code)
}

// classifyReadError maps an error raised while reading an open stream.
// Context errors stay generic so errors.Is still finds them; they are checked
// first because context.DeadlineExceeded also satisfies net.Error.
func classifyReadError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.New(apperrors.ErrCodeStreamRead, msgStreamRead, http.StatusBadGateway).WithCause(err)
	case errors.Is(err, io.ErrUnexpectedEOF), strings.Contains(err.Error(), "chunked"):
		return apperrors.New(apperrors.ErrCodeStreamInterrupted, msgStreamInterrupted, http.StatusBadGateway).WithCause(err)
	case isNetworkError(err):
		return apperrors.New(apperrors.ErrCodeNetwork, msgNetwork, http.StatusBadGateway).WithCause(err)
	default:
		return apperrors.New(apperrors.ErrCodeStreamRead, msgStreamRead, http.StatusBadGateway).WithCause(err)
	}
}

func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsGenerationFailed reports whether the provider itself declared the task failed.
func IsGenerationFailed(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeGenerationFailed)
}

// MayStillComplete reports whether err leaves the task possibly running on
// the provider, so a later result lookup may still succeed.
func MayStillComplete(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeStreamIncomplete) ||
		apperrors.HasCode(err, apperrors.ErrCodeStreamInterrupted) ||
		apperrors.HasCode(err, apperrors.ErrCodeTimeout)
}
