package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jp3/expedientes-api/internal/service"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
	"github.com/jp3/expedientes-api/pkg/response"
)

// SchoolHandler handles escuela endpoints.
type SchoolHandler struct {
	service *service.SchoolService
}

// NewSchoolHandler constructs an escuela handler.
func NewSchoolHandler(svc *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{service: svc}
}

// List godoc
// @Summary List escuelas
// @Tags Escuelas
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/escuelas [get]
func (h *SchoolHandler) List(c *gin.Context) {
	schools, pagination, err := h.service.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schools, pagination)
}

// Get godoc
// @Summary Get escuela by id
// @Tags Escuelas
// @Produce json
// @Param id path string true "Escuela ID"
// @Success 200 {object} response.Envelope
// @Router /api/escuelas/{id} [get]
func (h *SchoolHandler) Get(c *gin.Context) {
	school, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// Create godoc
// @Summary Create escuela
// @Tags Escuelas
// @Accept json
// @Produce json
// @Param payload body service.SchoolRequest true "Escuela payload"
// @Success 201 {object} response.Envelope
// @Router /api/escuelas [post]
func (h *SchoolHandler) Create(c *gin.Context) {
	var req service.SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	school, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// Update godoc
// @Summary Update escuela
// @Tags Escuelas
// @Accept json
// @Produce json
// @Param id path string true "Escuela ID"
// @Param payload body service.SchoolRequest true "Escuela payload"
// @Success 200 {object} response.Envelope
// @Router /api/escuelas/{id} [put]
func (h *SchoolHandler) Update(c *gin.Context) {
	var req service.SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	school, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// Delete godoc
// @Summary Delete escuela
// @Tags Escuelas
// @Produce json
// @Param id path string true "Escuela ID"
// @Success 204
// @Router /api/escuelas/{id} [delete]
func (h *SchoolHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
