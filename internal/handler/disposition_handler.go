package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jp3/expedientes-api/internal/service"
	appErrors "github.com/jp3/expedientes-api/pkg/errors"
	"github.com/jp3/expedientes-api/pkg/response"
)

// DispositionHandler handles disposición endpoints.
type DispositionHandler struct {
	service *service.DispositionService
}

// NewDispositionHandler constructs a disposición handler.
func NewDispositionHandler(svc *service.DispositionService) *DispositionHandler {
	return &DispositionHandler{service: svc}
}

// dispositionPayload is the wire shape for create/update. Older clients send
// the docente/escuela references as one-element arrays; when both forms are
// present the array wins and only its first element is kept. The conversion
// happens here, once, so the service layer only ever sees singular references.
type dispositionPayload struct {
	Numero       string   `json:"numero"`
	Fecha        string   `json:"fecha"`
	Dispo        string   `json:"dispo"`
	DocenteID    *string  `json:"docente_id"`
	EscuelaID    *string  `json:"escuela_id"`
	ExpedienteID *string  `json:"expediente_id"`
	Docentes     []string `json:"docentes"`
	Escuelas     []string `json:"escuelas"`
	Cargo        *string  `json:"cargo"`
	Motivo       *string  `json:"motivo"`
	Enlace       *string  `json:"enlace"`
}

func (p dispositionPayload) toRequest() service.DispositionRequest {
	return service.DispositionRequest{
		Numero:       p.Numero,
		Fecha:        p.Fecha,
		Dispo:        p.Dispo,
		DocenteID:    firstRef(p.Docentes, p.DocenteID),
		EscuelaID:    firstRef(p.Escuelas, p.EscuelaID),
		ExpedienteID: p.ExpedienteID,
		Cargo:        p.Cargo,
		Motivo:       p.Motivo,
		Enlace:       p.Enlace,
	}
}

// firstRef collapses the two wire forms into one reference. A non-empty
// legacy array takes precedence and contributes only its first element; the
// singular field is the fallback when no array was sent. Blank ids become nil.
func firstRef(legacy []string, single *string) *string {
	if len(legacy) > 0 {
		if id := legacy[0]; id != "" {
			return &id
		}
		return nil
	}
	if single != nil && *single != "" {
		return single
	}
	return nil
}

// List godoc
// @Summary List disposiciones
// @Tags Disposiciones
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /api/disposiciones [get]
func (h *DispositionHandler) List(c *gin.Context) {
	dispositions, pagination, err := h.service.List(c.Request.Context(), parseListFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dispositions, pagination)
}

// Get godoc
// @Summary Get disposición by id
// @Tags Disposiciones
// @Produce json
// @Param id path string true "Disposición ID"
// @Success 200 {object} response.Envelope
// @Router /api/disposiciones/{id} [get]
func (h *DispositionHandler) Get(c *gin.Context) {
	disposition, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, disposition, nil)
}

// Create godoc
// @Summary Create disposición
// @Tags Disposiciones
// @Accept json
// @Produce json
// @Param payload body dispositionPayload true "Disposición payload"
// @Success 201 {object} response.Envelope
// @Router /api/disposiciones [post]
func (h *DispositionHandler) Create(c *gin.Context) {
	var payload dispositionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	disposition, err := h.service.Create(c.Request.Context(), payload.toRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, disposition)
}

// Update godoc
// @Summary Update disposición
// @Tags Disposiciones
// @Accept json
// @Produce json
// @Param id path string true "Disposición ID"
// @Param payload body dispositionPayload true "Disposición payload"
// @Success 200 {object} response.Envelope
// @Router /api/disposiciones/{id} [put]
func (h *DispositionHandler) Update(c *gin.Context) {
	var payload dispositionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	disposition, err := h.service.Update(c.Request.Context(), c.Param("id"), payload.toRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, disposition, nil)
}

// Delete godoc
// @Summary Delete disposición
// @Tags Disposiciones
// @Produce json
// @Param id path string true "Disposición ID"
// @Success 204
// @Router /api/disposiciones/{id} [delete]
func (h *DispositionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
