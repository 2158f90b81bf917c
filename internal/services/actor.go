package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/domain/access"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/apierr"
	"github.com/yungbote/nishad-backend/internal/platform/ctxutil"
)

var errUnauthenticated = apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))

// actorFromContext returns the caller attached by the auth middleware.
func actorFromContext(ctx context.Context) (access.Actor, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return access.Actor{}, errUnauthenticated
	}
	role, ok := user.ParseRole(rd.Role)
	if !ok {
		role = user.RoleSupporter
	}
	return access.Actor{UserID: rd.UserID, Role: role}, nil
}

func notFound(op, format string, args ...any) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf(format, args...), nil)
}

func invalid(op, format string, args ...any) error {
	return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf(format, args...), nil)
}
