package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/internal/domains/tvshow/service"
	"tvshow-catalog/internal/shared/middleware"
	"tvshow-catalog/internal/shared/response"
)

type ShowHandler struct {
	service service.ServiceInterface
}

func NewShowHandler(svc service.ServiceInterface) *ShowHandler {
	return &ShowHandler{service: svc}
}

// ════════════════════════════════════════════════════════════════
// LIST: GET /v1/shows?page=1
// ════════════════════════════════════════════════════════════════

func (h *ShowHandler) GetPage(c *gin.Context) {
	pageNumber, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_PAGE_NUMBER", "page must be an integer")
		return
	}

	page, err := h.service.GetPage(c.Request.Context(), pageNumber)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Raw(c, http.StatusOK, page)
}

// ════════════════════════════════════════════════════════════════
// SEARCH: GET /v1/shows/search?name=&exact=&premiered_from=&premiered_to=&origin_id=&limit=
// ════════════════════════════════════════════════════════════════

func (h *ShowHandler) Search(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	shows, err := h.service.Query(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Raw(c, http.StatusOK, shows)
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/shows/:id
// ════════════════════════════════════════════════════════════════

func (h *ShowHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	show, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Raw(c, http.StatusOK, show)
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /v1/shows
// ════════════════════════════════════════════════════════════════

func (h *ShowHandler) Create(c *gin.Context) {
	var req model.ShowView
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	show, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Raw(c, http.StatusCreated, show)
}

// ════════════════════════════════════════════════════════════════
// BULK CREATE: POST /v1/shows/bulk
// ════════════════════════════════════════════════════════════════

func (h *ShowHandler) CreateBulk(c *gin.Context) {
	var req []model.ShowView
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	added, err := h.service.AddMany(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"added": added})
}

// ════════════════════════════════════════════════════════════════
// UPDATE: POST|PATCH /v1/shows/:id
// ════════════════════════════════════════════════════════════════

func (h *ShowHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req model.ShowView
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	show, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Raw(c, http.StatusOK, show)
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /v1/shows/:id
// ════════════════════════════════════════════════════════════════

func (h *ShowHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShowHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_ID", model.ErrInvalidShowID.Error())
		return 0, false
	}
	return id, true
}

// handleError maps domain errors to status codes. Unexpected errors are
// logged with a correlation id and their message is not sent to the client.
func (h *ShowHandler) handleError(c *gin.Context, err error) {
	status := model.ToHTTPStatus(err)

	if status == http.StatusInternalServerError {
		correlationID := uuid.NewString()
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("correlation_id", correlationID).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")

		response.InternalServerError(c, correlationID)
		return
	}

	response.ErrorResponse(c, status, model.ToErrorCode(err), err.Error())
}

func parseFilter(c *gin.Context) (model.ShowFilter, error) {
	filter := model.ShowFilter{
		Name:      strings.TrimSpace(c.Query("name")),
		ExactName: c.Query("exact") == "true",
	}

	var err error
	if filter.PremieredFrom, err = model.ParsePremiereDate(c.Query("premiered_from")); err != nil {
		return filter, err
	}
	if filter.PremieredTo, err = model.ParsePremiereDate(c.Query("premiered_to")); err != nil {
		return filter, err
	}

	if raw := c.Query("origin_id"); raw != "" {
		originID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, model.ErrInvalidArgument
		}
		filter.OriginID = &originID
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filter, model.ErrInvalidArgument
		}
		filter.Limit = limit
	}

	return filter, nil
}
