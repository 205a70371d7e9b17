package handler

import (
	"net/http"
	"time"

	"voice-bridge/internal/apierrors"
	"voice-bridge/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CallRecordResponse is the API view of a call record
type CallRecordResponse struct {
	ID                 uuid.UUID  `json:"id"`
	CallSid            *string    `json:"call_sid,omitempty"`
	StreamSid          *string    `json:"stream_sid,omitempty"`
	Status             string     `json:"status"`
	EndReason          *string    `json:"end_reason,omitempty"`
	FramesIn           int        `json:"frames_in"`
	FramesAppended     int        `json:"frames_appended"`
	Commits            int        `json:"commits"`
	ResponsesRequested int        `json:"responses_requested"`
	DeltasRelayed      int        `json:"deltas_relayed"`
	DeltasDropped      int        `json:"deltas_dropped"`
	MalformedMessages  int        `json:"malformed_messages"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
}

func toCallRecordResponse(r *store.CallRecord) CallRecordResponse {
	resp := CallRecordResponse{
		ID:                 r.ID,
		Status:             r.Status,
		FramesIn:           r.FramesIn,
		FramesAppended:     r.FramesAppended,
		Commits:            r.Commits,
		ResponsesRequested: r.ResponsesRequested,
		DeltasRelayed:      r.DeltasRelayed,
		DeltasDropped:      r.DeltasDropped,
		MalformedMessages:  r.MalformedMessages,
		StartedAt:          r.StartedAt,
	}
	if r.CallSid.Valid {
		resp.CallSid = &r.CallSid.String
	}
	if r.StreamSid.Valid {
		resp.StreamSid = &r.StreamSid.String
	}
	if r.EndReason.Valid {
		resp.EndReason = &r.EndReason.String
	}
	if r.EndedAt.Valid {
		resp.EndedAt = &r.EndedAt.Time
	}
	return resp
}

// HandleGetCall returns the record of one call
func (h *Handler) HandleGetCall(c *gin.Context) {
	record, err := h.processor.GetCall(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCallRecordResponse(record))
}

// HandleActiveCalls reports how many calls are being bridged
func (h *Handler) HandleActiveCalls(c *gin.Context) {
	active, err := h.processor.ActiveCalls(c.Request.Context())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, active)
}
