package handlers

import (
	"net/http"

	"github.com/geocoder89/plantdoctor/internal/diseases"
	"github.com/gin-gonic/gin"
)

type DiseaseLookup interface {
	Lookup(name string) (diseases.Info, bool)
}

type DiseasesHandler struct {
	dict DiseaseLookup
}

func NewDiseasesHandler(dict DiseaseLookup) *DiseasesHandler {
	return &DiseasesHandler{dict: dict}
}

// Get keeps the {success,...} envelope the mobile client already parses.
func (h *DiseasesHandler) Get(ctx *gin.Context) {
	name := ctx.Param("name")

	info, ok := h.dict.Lookup(name)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": diseases.NotFoundMessage,
		})
		return
	}

	RespondCacheable(ctx, http.StatusOK, gin.H{
		"success": true,
		"disease": name,
		"info":    info,
	}, diseasesMaxAge)
}
