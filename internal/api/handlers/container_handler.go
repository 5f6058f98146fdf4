// internal/api/handlers/container_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
	"container-yard-api-server/internal/validation"
	"container-yard-api-server/internal/yard"
)

type ContainerHandler struct {
	Service *yard.ContainerService
}

type listContainersQuery struct {
	Status          string `form:"status" binding:"omitempty,oneof=IN_PARK OUT BOOKED"`
	ShippingLineID  string `form:"shippingLineId"`
	Type            string `form:"type" binding:"omitempty,oneof=DRY REEFER"`
	IsoCodeID       string `form:"isoCodeId"`
	ClientID        string `form:"clientId"`
	ContainerNumber string `form:"containerNumber"`
	Search          string `form:"search"`
	Page            int    `form:"page" binding:"omitempty,min=1"`
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// lineExitRequest is the gate-out form of a shipping line container.
type lineExitRequest struct {
	ExitDate *time.Time `json:"exitDate"`
	Booking  string     `json:"booking"`
	Vessel   string     `json:"vessel"`
	Client   string     `json:"client"`
	Comments string     `json:"comments"`
}

func (r lineExitRequest) toExit() yard.LineExit {
	out := yard.LineExit{Booking: r.Booking, Vessel: r.Vessel, Client: r.Client, Comments: r.Comments}
	if r.ExitDate != nil {
		out.ExitDate = *r.ExitDate
	}
	return out
}

type clientExitRequest struct {
	ExitDate *time.Time `json:"exitDate"`
	Comments string     `json:"comments"`
}

func (r clientExitRequest) toExit() yard.ClientExit {
	out := yard.ClientExit{Comments: r.Comments}
	if r.ExitDate != nil {
		out.ExitDate = *r.ExitDate
	}
	return out
}

func (h *ContainerHandler) ListContainers(c *gin.Context) {
	var q listContainersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindQueryError(err))
		return
	}
	number := q.ContainerNumber
	if number == "" {
		number = q.Search
	}

	page, err := h.Service.List(c.Request.Context(), store.ContainerFilter{
		Status:          models.ContainerStatus(q.Status),
		ShippingLineID:  q.ShippingLineID,
		Type:            models.ContainerType(q.Type),
		IsoCodeID:       q.IsoCodeID,
		ClientID:        q.ClientID,
		ContainerNumber: number,
		Page:            q.Page,
		Limit:           q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ContainerHandler) GetContainer(c *gin.Context) {
	container, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, container)
}

func (h *ContainerHandler) GetByNumber(c *gin.Context) {
	container, err := h.Service.GetByNumber(c.Request.Context(), c.Param("number"))
	h.respondLookup(c, container, err)
}

func (h *ContainerHandler) GetClientContainer(c *gin.Context) {
	container, err := h.Service.GetClientContainer(c.Request.Context(), c.Param("number"))
	h.respondLookup(c, container, err)
}

func (h *ContainerHandler) respondLookup(c *gin.Context, container *models.Container, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if container == nil {
		respondError(c, apperr.NotFound("container %s not found", yard.NormalizeNumber(c.Param("number"))))
		return
	}
	c.JSON(http.StatusOK, container)
}

// CreateLineEntry registers a shipping line drop-off.
func (h *ContainerHandler) CreateLineEntry(c *gin.Context) {
	var req yard.LineEntry
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	container, err := h.Service.EnterByShippingLine(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, container)
}

func (h *ContainerHandler) CreateClientEntry(c *gin.Context) {
	var req yard.ClientEntry
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	container, err := h.Service.EnterByClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, container)
}

func (h *ContainerHandler) UpdateContainer(c *gin.Context) {
	var patch models.ContainerPatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, err)
		return
	}
	container, err := h.Service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, container)
}

func (h *ContainerHandler) DeleteContainer(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Container deleted successfully"})
}

func (h *ContainerHandler) ExitByNumber(c *gin.Context) {
	var req lineExitRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	container, err := h.Service.ExitByShippingLine(c.Request.Context(), c.Param("number"), req.toExit())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, container)
}

func (h *ContainerHandler) ExitByID(c *gin.Context) {
	var req lineExitRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	container, err := h.Service.ExitByID(c.Request.Context(), c.Param("id"), models.SourceShippingLine, req.toExit())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, container)
}

func (h *ContainerHandler) ClientExitByNumber(c *gin.Context) {
	var req clientExitRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	container, err := h.Service.ExitByClient(c.Request.Context(), c.Param("number"), req.toExit())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, container)
}

func (h *ContainerHandler) ClientExitByID(c *gin.Context) {
	var req clientExitRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	exit := req.toExit()
	container, err := h.Service.ExitByID(c.Request.Context(), c.Param("id"), models.SourceClient,
		yard.LineExit{ExitDate: exit.ExitDate, Comments: exit.Comments})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, container)
}

// UploadPhoto attaches a damage photo sent as the multipart field "photo".
func (h *ContainerHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondError(c, apperr.Validation("photo file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	container, err := h.Service.AttachPhoto(c.Request.Context(), c.Param("id"), fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file)
	if errors.Is(err, yard.ErrPhotosDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "unavailable"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, container)
}

func bindQueryError(err error) error {
	if translated := validation.Translate(err); errors.Is(translated, apperr.ErrValidation) {
		return translated
	}
	return apperr.Validation("invalid query: %v", err)
}
