package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jp3/expedientes-api/internal/service"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
	"github.com/jp3/expedientes-api/pkg/response"
)

// CaseFileHandler handles expediente endpoints, including relation management
// and the nested disposiciones listing.
type CaseFileHandler struct {
	service      *service.CaseFileService
	dispositions *service.DispositionService
}

// NewCaseFileHandler constructs an expediente handler.
func NewCaseFileHandler(svc *service.CaseFileService, dispositions *service.DispositionService) *CaseFileHandler {
	return &CaseFileHandler{service: svc, dispositions: dispositions}
}

type relationPayload struct {
	Docentes []string `json:"docentes"`
	Escuelas []string `json:"escuelas"`
}

// List godoc
// @Summary List expedientes
// @Tags Expedientes
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/expedientes [get]
func (h *CaseFileHandler) List(c *gin.Context) {
	caseFiles, pagination, err := h.service.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, caseFiles, pagination)
}

// Get godoc
// @Summary Get expediente by id
// @Tags Expedientes
// @Produce json
// @Param id path string true "Expediente ID"
// @Success 200 {object} response.Envelope
// @Router /api/expedientes/{id} [get]
func (h *CaseFileHandler) Get(c *gin.Context) {
	caseFile, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, caseFile, nil)
}

// Create godoc
// @Summary Create expediente
// @Tags Expedientes
// @Accept json
// @Produce json
// @Param payload body service.CaseFileRequest true "Expediente payload"
// @Success 201 {object} response.Envelope
// @Router /api/expedientes [post]
func (h *CaseFileHandler) Create(c *gin.Context) {
	var req service.CaseFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	caseFile, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, caseFile)
}

// Update godoc
// @Summary Update expediente
// @Description Rewrites the expediente; the docentes/escuelas id lists replace the stored relation sets.
// @Tags Expedientes
// @Accept json
// @Produce json
// @Param id path string true "Expediente ID"
// @Param payload body service.CaseFileRequest true "Expediente payload"
// @Success 200 {object} response.Envelope
// @Router /api/expedientes/{id} [put]
func (h *CaseFileHandler) Update(c *gin.Context) {
	var req service.CaseFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	caseFile, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, caseFile, nil)
}

// Delete godoc
// @Summary Delete expediente
// @Tags Expedientes
// @Produce json
// @Param id path string true "Expediente ID"
// @Success 204
// @Router /api/expedientes/{id} [delete]
func (h *CaseFileHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDispositions godoc
// @Summary List disposiciones of an expediente
// @Tags Expedientes
// @Produce json
// @Param id path string true "Expediente ID"
// @Success 200 {object} response.Envelope
// @Router /api/expedientes/{id}/disposiciones [get]
func (h *CaseFileHandler) ListDispositions(c *gin.Context) {
	dispositions, err := h.dispositions.ListByCaseFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dispositions, nil)
}

// Associate godoc
// @Summary Link docentes or escuelas to an expediente
// @Tags Expedientes
// @Accept json
// @Produce json
// @Param id path string true "Expediente ID"
// @Param payload body relationPayload true "Relation ids to add"
// @Success 200 {object} response.Envelope
// @Router /api/expedientes/{id}/relaciones [post]
func (h *CaseFileHandler) Associate(c *gin.Context) {
	var req relationPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	id := c.Param("id")
	if err := h.service.AssociateTeachers(c.Request.Context(), id, req.Docentes); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.AssociateSchools(c.Request.Context(), id, req.Escuelas); err != nil {
		response.Error(c, err)
		return
	}

	caseFile, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, caseFile, nil)
}

// AssociateTeachers godoc
// @Summary Link docentes to an expediente
// @Tags Expedientes
// @Accept json
// @Produce json
// @Param id path string true "Expediente ID"
// @Param payload body relationPayload true "Docente ids to add"
// @Success 200 {object} response.Envelope
// @Router /api/expedientes/{id}/docentes [post]
func (h *CaseFileHandler) AssociateTeachers(c *gin.Context) {
	var req relationPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	id := c.Param("id")
	if err := h.service.AssociateTeachers(c.Request.Context(), id, req.Docentes); err != nil {
		response.Error(c, err)
		return
	}
	caseFile, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, caseFile, nil)
}

// AssociateSchools godoc
// @Summary Link escuelas to an expediente
// @Tags Expedientes
// @Accept json
// @Produce json
// @Param id path string true "Expediente ID"
// @Param payload body relationPayload true "Escuela ids to add"
// @Success 200 {object} response.Envelope
// @Router /api/expedientes/{id}/escuelas [post]
func (h *CaseFileHandler) AssociateSchools(c *gin.Context) {
	var req relationPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	id := c.Param("id")
	if err := h.service.AssociateSchools(c.Request.Context(), id, req.Escuelas); err != nil {
		response.Error(c, err)
		return
	}
	caseFile, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, caseFile, nil)
}

// DisassociateTeacher godoc
// @Summary Unlink a docente from an expediente
// @Tags Expedientes
// @Produce json
// @Param id path string true "Expediente ID"
// @Param docenteId path string true "Docente ID"
// @Success 204
// @Router /api/expedientes/{id}/docentes/{docenteId} [delete]
func (h *CaseFileHandler) DisassociateTeacher(c *gin.Context) {
	if err := h.service.DisassociateTeacher(c.Request.Context(), c.Param("id"), c.Param("docenteId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DisassociateSchool godoc
// @Summary Unlink an escuela from an expediente
// @Tags Expedientes
// @Produce json
// @Param id path string true "Expediente ID"
// @Param escuelaId path string true "Escuela ID"
// @Success 204
// @Router /api/expedientes/{id}/escuelas/{escuelaId} [delete]
func (h *CaseFileHandler) DisassociateSchool(c *gin.Context) {
	if err := h.service.DisassociateSchool(c.Request.Context(), c.Param("id"), c.Param("escuelaId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
