package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"parking-lot/internal/parking"
	"parking-lot/internal/payment"
)

func getServiceName() string {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	return "parking-lot-service"
}

// Handler exposes the slot pool over HTTP. It keeps the handles produced
// by allocation, keyed by slot number, because payment and release only
// work through the handle that allocation returned.
type Handler struct {
	pool *parking.InstrumentedPool

	mu      sync.Mutex
	handles map[int]*parking.SlotHandle
}

func NewHandler(pool *parking.InstrumentedPool) *Handler {
	return &Handler{
		pool:    pool,
		handles: make(map[int]*parking.SlotHandle),
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": getServiceName(),
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ParkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration is required")
		return
	}
	if req.DurationUnits < 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Duration must not be negative")
		return
	}

	category, err := parking.ParseCategory(req.Category)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := parking.NewVehicle(req.Registration, category)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	handle, err := h.pool.Allocate(ctx, vehicle, req.DurationUnits)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if handle == nil {
		WriteError(ctx, w, http.StatusConflict, "Parking lot is full")
		return
	}

	h.mu.Lock()
	h.handles[handle.Number()] = handle
	h.mu.Unlock()

	fee, err := h.pool.QuoteFee(ctx, handle)
	if err != nil {
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", ParkResponse{
		SlotNumber:    handle.Number(),
		Registration:  handle.Registration(),
		Category:      string(handle.Category()),
		DurationUnits: handle.DurationUnits(),
		FeeDue:        fee,
	})
}

func (h *Handler) GetFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handle, ok := h.lookupHandle(w, r)
	if !ok {
		return
	}

	fee, err := h.pool.QuoteFee(ctx, handle)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Fee quoted", FeeResponse{
		SlotNumber: handle.Number(),
		Amount:     fee,
	})
}

func (h *Handler) PayFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	handle, ok := h.handleForSlot(w, r, req.SlotNumber)
	if !ok {
		return
	}

	gate, err := payment.ByMethod(req.Method)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	fee, err := h.pool.QuoteFee(ctx, handle)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := gate.Settle(ctx, fee)
	if err != nil {
		// The slot stays occupied; the charge is safe to retry.
		WriteError(ctx, w, http.StatusPaymentRequired, err.Error())
		return
	}

	if err := h.pool.ConfirmPayment(ctx, handle); err != nil {
		WriteError(ctx, w, http.StatusConflict, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Payment confirmed", PayResponse{
		SlotNumber: handle.Number(),
		Amount:     receipt.Amount,
		Method:     receipt.Method,
		ReceiptID:  receipt.ID,
	})
}

func (h *Handler) LeaveSlot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	handle, ok := h.handleForSlot(w, r, req.SlotNumber)
	if !ok {
		return
	}

	if err := h.pool.Release(ctx, handle); err != nil {
		if errors.Is(err, parking.ErrPaymentRequired) {
			WriteError(ctx, w, http.StatusPaymentRequired, err.Error())
			return
		}
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	h.removeTicket(handle)

	WriteSuccess(ctx, w, "Slot vacated successfully", map[string]any{
		"slot_number": handle.Number(),
	})
}

// removeTicket drops a released handle from the ticket map. A concurrent
// park may have reclaimed the freed slot and filed its own ticket under
// the same number before we get here, so only our own entry is removed.
func (h *Handler) removeTicket(handle *parking.SlotHandle) {
	h.mu.Lock()
	if h.handles[handle.Number()] == handle {
		delete(h.handles, handle.Number())
	}
	h.mu.Unlock()
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	occupied := h.pool.Status(ctx)
	capacity := h.pool.Capacity()

	var slots []SlotStatus
	for i := 1; i <= capacity; i++ {
		slot := SlotStatus{
			SlotNumber: i,
			Occupied:   false,
		}

		for _, info := range occupied {
			if info.Number == i {
				slot.Occupied = true
				slot.State = info.State.String()
				slot.Registration = info.Registration
				slot.Category = string(info.Category)
				slot.DurationUnits = info.DurationUnits
				break
			}
		}

		slots = append(slots, slot)
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  capacity,
		Occupied:  len(occupied),
		Available: capacity - len(occupied),
		Slots:     slots,
	})
}

func (h *Handler) FindByRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	registration := chi.URLParam(r, "registration")
	if registration == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration number is required")
		return
	}

	slotNumber, found := h.pool.FindByRegistration(ctx, registration)
	if !found {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", FindVehicleResponse{
		SlotNumber:   slotNumber,
		Registration: registration,
	})
}

func (h *Handler) lookupHandle(w http.ResponseWriter, r *http.Request) (*parking.SlotHandle, bool) {
	ctx := r.Context()

	slotNumber, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid slot number")
		return nil, false
	}

	return h.handleForSlot(w, r, slotNumber)
}

func (h *Handler) handleForSlot(w http.ResponseWriter, r *http.Request, slotNumber int) (*parking.SlotHandle, bool) {
	h.mu.Lock()
	handle, ok := h.handles[slotNumber]
	h.mu.Unlock()

	if !ok {
		WriteError(r.Context(), w, http.StatusNotFound, "No active ticket for slot")
		return nil, false
	}
	return handle, true
}
