package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/geocoder89/plantdoctor/internal/domain/planting"
	"github.com/gin-gonic/gin"
)

type PlantingStore interface {
	Create(ctx context.Context, p planting.Planting) error
	ListByUser(ctx context.Context, userID string) ([]planting.Planting, error)
	Delete(ctx context.Context, userID, id string) error
	AddHistory(ctx context.Context, userID string, ev planting.HistoryEvent) error
	ListHistory(ctx context.Context, userID, plantingID string) ([]planting.HistoryEvent, error)
}

type CultureLookup interface {
	GetByID(ctx context.Context, id string) (culture.Culture, error)
}

type PlantingsHandler struct {
	plantings PlantingStore
	cultures  CultureLookup
}

func NewPlantingsHandler(plantings PlantingStore, cultures CultureLookup) *PlantingsHandler {
	return &PlantingsHandler{plantings: plantings, cultures: cultures}
}

func (h *PlantingsHandler) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req planting.CreatePlantingRequest
	if !BindJSON(ctx, &req) {
		return
	}

	plantedOn, err := planting.ParseDate(req.PlantingDate)
	if err != nil {
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "planting_date"})
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	c, err := h.cultures.GetByID(cctx, req.CultureID)
	if err != nil {
		if errors.Is(err, culture.ErrNotFound) {
			RespondNotFound(ctx, "Culture not found")
			return
		}
		RespondInternal(ctx, "Could not create planting", err)
		return
	}

	p := planting.NewPlanting(userID, c.ID, c.Name, plantedOn, c.CycleDays, req.Notes)

	if err := h.plantings.Create(cctx, p); err != nil {
		if errors.Is(err, culture.ErrUnknownCulture) {
			RespondNotFound(ctx, "Culture not found")
			return
		}
		RespondInternal(ctx, "Could not create planting", err)
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *PlantingsHandler) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, 2*time.Second)
	defer cancel()

	items, err := h.plantings.ListByUser(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not list plantings", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *PlantingsHandler) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathUUID(ctx, "id", "Planting not found")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	if err := h.plantings.Delete(cctx, userID, id); err != nil {
		if errors.Is(err, planting.ErrNotFound) {
			RespondNotFound(ctx, "Planting not found")
			return
		}
		RespondInternal(ctx, "Could not delete planting", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *PlantingsHandler) AddHistory(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathUUID(ctx, "id", "Planting not found")
	if !ok {
		return
	}

	var req planting.AddHistoryRequest
	if !BindJSON(ctx, &req) {
		return
	}

	on, err := planting.ParseDate(req.EventDate)
	if err != nil {
		RespondBadRequest(ctx, err.Error(), gin.H{"field": "event_date"})
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	ev := planting.NewHistoryEvent(id, req, on)

	if err := h.plantings.AddHistory(cctx, userID, ev); err != nil {
		if errors.Is(err, planting.ErrNotFound) {
			RespondNotFound(ctx, "Planting not found")
			return
		}
		RespondInternal(ctx, "Could not add history event", err)
		return
	}

	ctx.JSON(http.StatusCreated, ev)
}

func (h *PlantingsHandler) ListHistory(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	id, ok := pathUUID(ctx, "id", "Planting not found")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, 2*time.Second)
	defer cancel()

	items, err := h.plantings.ListHistory(cctx, userID, id)
	if err != nil {
		if errors.Is(err, planting.ErrNotFound) {
			RespondNotFound(ctx, "Planting not found")
			return
		}
		RespondInternal(ctx, "Could not list history", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
