package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/pms/backend/internal/application/syncqueue"
	"github.com/pms/backend/internal/infrastructure/queue"
	"github.com/pms/backend/internal/interfaces/http/middleware"
)

// SyncHandler exposes the synchronization queue over HTTP
type SyncHandler struct {
	BaseHandler
	dispatcher *queue.Dispatcher
	service    *syncqueue.Service
}

// NewSyncHandler creates a sync handler
func NewSyncHandler(dispatcher *queue.Dispatcher, service *syncqueue.Service) *SyncHandler {
	return &SyncHandler{dispatcher: dispatcher, service: service}
}

// EnqueueRequest is the wire shape of a submission
type EnqueueRequest struct {
	RequestRef   string `json:"request_ref"`
	Partner      string `json:"partner"`
	Operation    string `json:"operation" binding:"required"`
	OperationKey string `json:"operation_key" binding:"required"`
	TargetID     string `json:"target_id"`
	PayloadType  string `json:"payload_type"`
	Payload      any    `json:"payload"`
	HotelID      string `json:"hotel_id"`
}

// EnqueueResponse reports how a submission was handled
type EnqueueResponse struct {
	RequestRef string `json:"request_ref"`
	Queued     bool   `json:"queued"`
	Status     string `json:"status"`
}

// Submit accepts one unit of partner work. With queue mode on it responds
// 202 and the worker completes the work later; with queue mode off the
// operation runs inline and the response carries its outcome.
func (h *SyncHandler) Submit(c *gin.Context) {
	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid submission body: "+err.Error())
		return
	}

	payload, err := marshalPayload(req.Payload)
	if err != nil {
		h.BadRequest(c, "Payload is not valid JSON")
		return
	}

	result, err := h.dispatcher.Submit(c.Request.Context(), queue.EnqueueRequest{
		TenantCode:   middleware.GetTenantCode(c),
		RequestRef:   req.RequestRef,
		Partner:      req.Partner,
		Operation:    req.Operation,
		OperationKey: req.OperationKey,
		TargetID:     req.TargetID,
		PayloadType:  req.PayloadType,
		Payload:      payload,
		HotelID:      req.HotelID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := EnqueueResponse{
		RequestRef: result.RequestRef,
		Queued:     result.Queued,
		Status:     string(result.Status),
	}
	if result.Queued {
		h.Accepted(c, resp)
		return
	}
	h.Success(c, resp)
}

// Settings returns the effective queue settings for the request's tenant
func (h *SyncHandler) Settings(c *gin.Context) {
	settings, err := h.service.Settings(c.Request.Context(), middleware.GetTenantCode(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// ListQueue returns a page of the tenant's queue items
func (h *SyncHandler) ListQueue(c *gin.Context) {
	var filter syncqueue.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.service.List(c.Request.Context(), middleware.GetTenantCode(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetItem returns one queue item with its audit trail
func (h *SyncHandler) GetItem(c *gin.Context) {
	detail, err := h.service.GetByRef(c.Request.Context(), middleware.GetTenantCode(c), c.Param("ref"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Stats returns the tenant's queue item counts per status
func (h *SyncHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), middleware.GetTenantCode(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Retry re-arms a failed item so the worker picks it up again
func (h *SyncHandler) Retry(c *gin.Context) {
	item, err := h.service.Retry(c.Request.Context(), middleware.GetTenantCode(c), c.Param("ref"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// marshalPayload re-encodes the submitted payload for storage. A nil
// payload stays nil rather than becoming the JSON literal null.
func marshalPayload(payload any) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	return json.Marshal(payload)
}
