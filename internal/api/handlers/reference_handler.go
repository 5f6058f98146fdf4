// internal/api/handlers/reference_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/yard"
)

// ReferenceHandler serves one reference collection; the routes create one
// per kind (shipping lines, ISO codes, clients).
type ReferenceHandler struct {
	Service *yard.ReferenceService
	Kind    models.ReferenceKind
}

func (h *ReferenceHandler) List(c *gin.Context) {
	refs, err := h.Service.List(c.Request.Context(), h.Kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, refs)
}

func (h *ReferenceHandler) Get(c *gin.Context) {
	ref, err := h.Service.Get(c.Request.Context(), h.Kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *ReferenceHandler) Create(c *gin.Context) {
	var req yard.ReferenceInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	ref, err := h.Service.Create(c.Request.Context(), h.Kind, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

func (h *ReferenceHandler) Update(c *gin.Context) {
	var patch models.ReferencePatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, err)
		return
	}
	ref, err := h.Service.Update(c.Request.Context(), h.Kind, c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *ReferenceHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), h.Kind, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.Kind.Label() + " deleted successfully"})
}
