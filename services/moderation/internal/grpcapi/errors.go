package grpcapi

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/mentor-platform/services/moderation/internal/store"
	"github.com/example/mentor-platform/services/moderation/internal/votes"
)

const errorDomain = "moderation"

func errInvalidArgument(code, msg string, fieldViolations map[string]string) error {
	st := status.New(codes.InvalidArgument, msg)
	info := &errdetails.ErrorInfo{Reason: code, Domain: errorDomain}

	bad := &errdetails.BadRequest{}
	for field, desc := range fieldViolations {
		bad.FieldViolations = append(bad.FieldViolations, &errdetails.BadRequest_FieldViolation{Field: field, Description: desc})
	}

	st2, err := st.WithDetails(info, bad)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

func errWithInfo(c codes.Code, code, msg string) error {
	st := status.New(c, msg)
	st2, err := st.WithDetails(&errdetails.ErrorInfo{Reason: code, Domain: errorDomain})
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

func errUnauthenticated(code, msg string) error {
	return errWithInfo(codes.Unauthenticated, code, msg)
}

// toStatus translates domain errors into gRPC statuses.
func toStatus(err error) error {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		return errInvalidArgument("VALIDATION_FAILED", verr.Error(), map[string]string{verr.Field: verr.Reason})
	case errors.Is(err, store.ErrNotFound):
		return errWithInfo(codes.NotFound, "NOT_FOUND", "not found")
	case errors.Is(err, votes.ErrSelfVote):
		return errWithInfo(codes.PermissionDenied, "SELF_VOTE", "cannot vote on own content")
	case errors.Is(err, store.ErrForbidden):
		return errWithInfo(codes.PermissionDenied, "FORBIDDEN", "admin role required")
	case errors.Is(err, store.ErrConflict):
		return errWithInfo(codes.Aborted, "CONFLICT", "too many concurrent updates")
	default:
		return errWithInfo(codes.Internal, "INTERNAL", "internal error")
	}
}
