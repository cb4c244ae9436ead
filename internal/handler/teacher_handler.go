package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jp3/expedientes-api/internal/service"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
	"github.com/jp3/expedientes-api/pkg/response"
)

// TeacherHandler handles docente endpoints.
type TeacherHandler struct {
	service *service.TeacherService
}

// NewTeacherHandler constructs a docente handler.
func NewTeacherHandler(svc *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{service: svc}
}

// List godoc
// @Summary List docentes
// @Tags Docentes
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/docentes [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, pagination, err := h.service.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, pagination)
}

// Get godoc
// @Summary Get docente by id
// @Tags Docentes
// @Produce json
// @Param id path string true "Docente ID"
// @Success 200 {object} response.Envelope
// @Router /api/docentes/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Create godoc
// @Summary Create docente
// @Tags Docentes
// @Accept json
// @Produce json
// @Param payload body service.TeacherRequest true "Docente payload"
// @Success 201 {object} response.Envelope
// @Router /api/docentes [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req service.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update godoc
// @Summary Update docente
// @Tags Docentes
// @Accept json
// @Produce json
// @Param id path string true "Docente ID"
// @Param payload body service.TeacherRequest true "Docente payload"
// @Success 200 {object} response.Envelope
// @Router /api/docentes/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req service.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Delete godoc
// @Summary Delete docente
// @Tags Docentes
// @Produce json
// @Param id path string true "Docente ID"
// @Success 204
// @Router /api/docentes/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
