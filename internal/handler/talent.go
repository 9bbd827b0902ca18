// This file defines the public talent browsing API.  Profiles are
// readable without authentication.

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/talent-marketplace/internal/model"
	"github.com/iliyamo/talent-marketplace/internal/repository"
)

// ProfileReader is implemented by repository.ProfileRepo.
type ProfileReader interface {
	ListAll(ctx context.Context) ([]model.Profile, error)
	GetByID(ctx context.Context, id uint64) (model.Profile, error)
}

// TalentHandler serves talent profiles.
type TalentHandler struct {
	Profiles ProfileReader
}

func NewTalentHandler(profiles ProfileReader) *TalentHandler {
	if profiles == nil {
		panic("nil repository passed to NewTalentHandler")
	}
	return &TalentHandler{Profiles: profiles}
}

// ListTalents handles GET /v1/talents.
func (h *TalentHandler) ListTalents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Profiles.ListAll(ctx)
	if err != nil {
		c.Logger().Errorf("list talents: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch talents"})
	}
	return c.JSON(http.StatusOK, newList(items))
}

// GetTalent handles GET /v1/talents/:id.
func (h *TalentHandler) GetTalent(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid talent id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "talent not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch talent"})
	}
	return c.JSON(http.StatusOK, p)
}
