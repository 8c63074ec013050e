package apiv1

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SanjoDeundiak/devmirror/pkg/lib"
)

// StatusError converts an engine error into a gRPC status error. The message
// is "<category>: <readable message>"; the technical cause stays in the
// daemon log.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	category := lib.CategoryOf(err)
	return status.Errorf(Code(err), "%s: %s", category, lib.Message(err))
}

// Code maps an engine error to a gRPC code by category.
func Code(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	switch lib.CategoryOf(err) {
	case lib.CategoryValidation:
		return codes.InvalidArgument
	case lib.CategoryConnection:
		return codes.Unavailable
	case lib.CategoryProcess:
		if errors.Is(err, lib.ErrAlreadyRunning) {
			return codes.FailedPrecondition
		}
		return codes.Aborted
	case lib.CategoryBinary:
		return codes.NotFound
	default:
		if errors.Is(err, lib.ErrCleanedUp) {
			return codes.Unavailable
		}
		return codes.Internal
	}
}
