package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/plantdoctor/internal/domain/culture"
	"github.com/geocoder89/plantdoctor/internal/domain/diagnosis"
	"github.com/gin-gonic/gin"
)

type DiagnosisStore interface {
	Create(ctx context.Context, d diagnosis.Diagnosis) error
	ListByUser(ctx context.Context, userID string) ([]diagnosis.Diagnosis, error)
}

type DiagnosesHandler struct {
	diagnoses DiagnosisStore
}

func NewDiagnosesHandler(diagnoses DiagnosisStore) *DiagnosesHandler {
	return &DiagnosesHandler{diagnoses: diagnoses}
}

func (h *DiagnosesHandler) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req diagnosis.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 3*time.Second)
	defer cancel()

	d := diagnosis.New(userID, req)
	if err := h.diagnoses.Create(cctx, d); err != nil {
		if errors.Is(err, culture.ErrUnknownCulture) {
			RespondBadRequest(ctx, "Unknown culture id", gin.H{"field": "culture_id"})
			return
		}
		RespondInternal(ctx, "Could not save diagnosis", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "Diagnóstico salvo com sucesso!",
		"diagnosis": d,
	})
}

func (h *DiagnosesHandler) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, 2*time.Second)
	defer cancel()

	items, err := h.diagnoses.ListByUser(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not list diagnoses", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
