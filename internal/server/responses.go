package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type ParkRequest struct {
	Registration  string `json:"registration"`
	Category      string `json:"category"`
	DurationUnits int    `json:"duration_units"`
}

type ParkResponse struct {
	SlotNumber    int     `json:"slot_number"`
	Registration  string  `json:"registration"`
	Category      string  `json:"category"`
	DurationUnits int     `json:"duration_units"`
	FeeDue        float64 `json:"fee_due"`
}

type FeeResponse struct {
	SlotNumber int     `json:"slot_number"`
	Amount     float64 `json:"amount"`
}

type PayRequest struct {
	SlotNumber int    `json:"slot_number"`
	Method     string `json:"method"`
}

type PayResponse struct {
	SlotNumber int     `json:"slot_number"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
	ReceiptID  string  `json:"receipt_id"`
}

type LeaveRequest struct {
	SlotNumber int `json:"slot_number"`
}

type FindVehicleResponse struct {
	SlotNumber   int    `json:"slot_number"`
	Registration string `json:"registration"`
}

type SlotStatus struct {
	SlotNumber    int    `json:"slot_number"`
	Occupied      bool   `json:"occupied"`
	State         string `json:"state,omitempty"`
	Registration  string `json:"registration,omitempty"`
	Category      string `json:"category,omitempty"`
	DurationUnits int    `json:"duration_units,omitempty"`
}

type StatusResponse struct {
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
	Slots     []SlotStatus `json:"slots"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
