package grpcapi

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/mentor-platform/internal/platform/auth"
	"github.com/example/mentor-platform/services/moderation/internal/flags"
	"github.com/example/mentor-platform/services/moderation/internal/messages"
	"github.com/example/mentor-platform/services/moderation/internal/store"
	"github.com/example/mentor-platform/services/moderation/internal/votes"
)

// ModerationService implements ModerationServer.
type ModerationService struct {
	Votes    *votes.Engine
	Flags    *flags.Manager
	Messages *messages.Service
	Log      *zap.Logger
}

var _ ModerationServer = (*ModerationService)(nil)

// actorFrom returns the caller authenticated by authInterceptor.
func actorFrom(ctx context.Context) (store.Actor, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok || strings.TrimSpace(userID) == "" {
		return store.Actor{}, errUnauthenticated("AUTH_MISSING", "authentication required")
	}
	role, _ := auth.RoleFromContext(ctx)
	return store.Actor{ID: userID, Role: store.Role(role)}, nil
}

func field(in *structpb.Struct, name string) string {
	v, ok := in.GetFields()[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

// toStruct renders a domain value with its JSON field names.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func (s *ModerationService) reply(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, s.internal("encode response", err)
	}
	return out, nil
}

func (s *ModerationService) fail(method string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal && s.Log != nil {
		s.Log.Error("grpc call failed", zap.String("method", method), zap.Error(err))
	}
	return st
}

func (s *ModerationService) internal(what string, err error) error {
	if s.Log != nil {
		s.Log.Error(what, zap.Error(err))
	}
	return errWithInfo(codes.Internal, "INTERNAL", what)
}

// Vote takes {targetType, id, direction} where direction is up, down, like
// or dislike.
func (s *ModerationService) Vote(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	target := store.TargetType(strings.ToLower(field(in, "targetType")))
	id := field(in, "id")

	var updated store.Votable
	switch dir := strings.ToLower(field(in, "direction")); dir {
	case "like":
		updated, err = s.Votes.Like(ctx, target, id, actor.ID)
	case "dislike":
		updated, err = s.Votes.Dislike(ctx, target, id, actor.ID)
	default:
		var d votes.Direction
		d, err = votes.ParseDirection(dir)
		if err == nil {
			updated, err = s.Votes.Vote(ctx, target, id, actor.ID, d)
		}
	}
	if err != nil {
		return nil, s.fail("Vote", err)
	}
	return s.reply(updated)
}

// CreateFlag takes {targetType, targetId, reason, notes}.
func (s *ModerationService) CreateFlag(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.Flags.Create(ctx, flags.CreateInput{
		TargetType: store.TargetType(field(in, "targetType")),
		TargetID:   field(in, "targetId"),
		ReporterID: actor.ID,
		Reason:     field(in, "reason"),
		Notes:      field(in, "notes"),
	})
	if err != nil {
		return nil, s.fail("CreateFlag", err)
	}
	return s.reply(f)
}

// UpdateFlagStatus takes {id, status}. Admin only.
func (s *ModerationService) UpdateFlagStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	next := store.FlagStatus(strings.ToLower(field(in, "status")))
	f, err := s.Flags.UpdateStatus(ctx, actor, field(in, "id"), next)
	if err != nil {
		return nil, s.fail("UpdateFlagStatus", err)
	}
	return s.reply(f)
}

// FlagMessage takes {id, reason}.
func (s *ModerationService) FlagMessage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.Messages.Flag(ctx, actor, field(in, "id"), field(in, "reason"))
	if err != nil {
		return nil, s.fail("FlagMessage", err)
	}
	return s.reply(m)
}

// DeleteMessage takes {id} and answers {deleted}. Admin only.
func (s *ModerationService) DeleteMessage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	deleted, err := s.Messages.Delete(ctx, actor, field(in, "id"))
	if err != nil {
		return nil, s.fail("DeleteMessage", err)
	}
	return structpb.NewStruct(map[string]any{"deleted": deleted})
}
