package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/factshare/internal/errs"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus maps a service error to a gRPC status error. Unknown errors become
// codes.Internal with op as the only detail.
func ToStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && !isDomain(err) {
		return err
	}
	switch {
	case errors.Is(err, errs.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, "permission denied")
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, errs.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "rate limited")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Errorf(codes.Internal, "%s failed", op)
	}
}

func isDomain(err error) bool {
	for _, s := range []error{errs.ErrValidation, errs.ErrNotFound, errs.ErrUnauthorized,
		errs.ErrForbidden, errs.ErrAlreadyExists, errs.ErrRateLimited} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// FromStatus maps a gRPC error back to a domain sentinel, keeping the server message.
// Codes without a domain meaning are returned unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.InvalidArgument:
		sentinel = errs.ErrValidation
	case codes.NotFound:
		sentinel = errs.ErrNotFound
	case codes.Unauthenticated:
		sentinel = errs.ErrUnauthorized
	case codes.PermissionDenied:
		sentinel = errs.ErrForbidden
	case codes.AlreadyExists:
		sentinel = errs.ErrAlreadyExists
	case codes.ResourceExhausted:
		sentinel = errs.ErrRateLimited
	default:
		return err
	}
	msg := strings.TrimPrefix(st.Message(), sentinel.Error()+": ")
	if msg == "" || msg == sentinel.Error() {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
