package handler // handler defines http handlers

import (
	"errors"  // sentinel for a missing user id
	"strconv" // path parameter parsing
	"time"    // request timeouts

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/talent-marketplace/internal/middleware"
)

// dbTimeout bounds every database call made by a handler.
const dbTimeout = 5 * time.Second

var errNoUser = errors.New("invalid user_id in context")

// getUserID returns the authenticated user's id stored by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := middleware.UserID(c); ok {
		return id, nil
	}
	return 0, errNoUser
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// listResp is the envelope used by every collection endpoint.
type listResp[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newList[T any](items []T) listResp[T] {
	if items == nil {
		items = []T{}
	}
	return listResp[T]{Items: items, Total: len(items)}
}
