package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedPool decorates a Pool with tracing and metrics. The wrapped
// pool carries the semantics; this layer only observes.
type InstrumentedPool struct {
	*Pool
	telemetry *TelemetryProvider

	// Metrics
	allocations       metric.Int64Counter
	payments          metric.Int64Counter
	releases          metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSlotsGauge   metric.Int64UpDownCounter
	revenueTotal      metric.Float64Counter
	operationDuration metric.Float64Histogram
}

func NewInstrumentedPool(capacity int, telemetry *TelemetryProvider) (*InstrumentedPool, error) {
	basePool := NewPool(capacity)

	meter := telemetry.Meter()

	allocations, err := meter.Int64Counter("slot_allocations_total",
		metric.WithDescription("Total number of slot allocation attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	payments, err := meter.Int64Counter("payment_confirmations_total",
		metric.WithDescription("Total number of payment confirmation attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	releases, err := meter.Int64Counter("slot_releases_total",
		metric.WithDescription("Total number of slot release attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenueTotal, err := meter.Float64Counter("parking_revenue_total",
		metric.WithDescription("Sum of confirmed parking fees"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of slot pool operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	ip := &InstrumentedPool{
		Pool:              basePool,
		telemetry:         telemetry,
		allocations:       allocations,
		payments:          payments,
		releases:          releases,
		occupancyGauge:    occupancyGauge,
		totalSlotsGauge:   totalSlotsGauge,
		revenueTotal:      revenueTotal,
		operationDuration: operationDuration,
	}

	// Set initial total slots metric
	totalSlotsGauge.Add(context.Background(), int64(capacity))

	return ip, nil
}

func (ip *InstrumentedPool) Allocate(ctx context.Context, vehicle *Vehicle, durationUnits int) (*SlotHandle, error) {
	tracer := ip.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "slot_pool.allocate",
		trace.WithAttributes(
			attribute.String("vehicle.registration_number", vehicle.RegistrationNumber),
			attribute.String("vehicle.category", string(vehicle.Category)),
			attribute.Int("duration_units", durationUnits),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("finding_free_slot")

	handle, err := ip.Pool.Allocate(vehicle, durationUnits)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "allocate"),
		attribute.String("vehicle_category", string(vehicle.Category)),
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	case handle == nil:
		span.AddEvent("capacity_exhausted")
		labels = append(labels, attribute.String("status", "capacity_exhausted"))
	default:
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.Int("allocated_slot", handle.Number()),
		)
		span.SetAttributes(attribute.Int("allocated_slot_number", handle.Number()))
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("slot_number", handle.Number()),
		))
		ip.occupancyGauge.Add(ctx, 1)
	}

	ip.allocations.Add(ctx, 1, metric.WithAttributes(labels...))
	ip.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return handle, err
}

func (ip *InstrumentedPool) QuoteFee(ctx context.Context, handle *SlotHandle) (float64, error) {
	tracer := ip.telemetry.Tracer()
	_, span := tracer.Start(ctx, "slot_pool.quote_fee",
		trace.WithAttributes(
			attribute.Int("slot_number", handle.Number()),
			attribute.String("vehicle.category", string(handle.Category())),
			attribute.Int("duration_units", handle.DurationUnits()),
		))
	defer span.End()

	amount, err := ip.Pool.QuoteFee(handle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Float64("fee_amount", amount))
	return amount, nil
}

func (ip *InstrumentedPool) ConfirmPayment(ctx context.Context, handle *SlotHandle) error {
	tracer := ip.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "slot_pool.confirm_payment",
		trace.WithAttributes(
			attribute.Int("slot_number", handle.Number()),
		))
	defer span.End()

	start := time.Now()

	err := ip.Pool.ConfirmPayment(handle)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "confirm_payment"),
		attribute.Int("slot_number", handle.Number()),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.AddEvent("payment_confirmed")

		if amount, feeErr := ip.Pool.QuoteFee(handle); feeErr == nil {
			ip.revenueTotal.Add(ctx, amount, metric.WithAttributes(
				attribute.String("vehicle_category", string(handle.Category())),
			))
		}
	}

	ip.payments.Add(ctx, 1, metric.WithAttributes(labels...))
	ip.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return err
}

func (ip *InstrumentedPool) Release(ctx context.Context, handle *SlotHandle) error {
	tracer := ip.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "slot_pool.release",
		trace.WithAttributes(
			attribute.Int("slot_number", handle.Number()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("releasing_slot")

	freed, err := ip.Pool.release(handle)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "release"),
		attribute.Int("slot_number", handle.Number()),
	}

	switch {
	case errors.Is(err, ErrPaymentRequired):
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "payment_required"))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	default:
		labels = append(labels, attribute.String("status", "success"))
		span.AddEvent("slot_released")
		// A retried exit on an already-free slot succeeds but must not
		// move the gauge again.
		if freed {
			ip.occupancyGauge.Add(ctx, -1)
		}
	}

	ip.releases.Add(ctx, 1, metric.WithAttributes(labels...))
	ip.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return err
}

func (ip *InstrumentedPool) Status(ctx context.Context) []SlotInfo {
	tracer := ip.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "slot_pool.status")
	defer span.End()

	start := time.Now()

	infos := ip.Pool.Status()

	duration := time.Since(start).Seconds()

	span.SetAttributes(
		attribute.Int("occupied_slots_count", len(infos)),
		attribute.Int("total_capacity", ip.capacity),
	)

	labels := []attribute.KeyValue{
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	}

	ip.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return infos
}

func (ip *InstrumentedPool) FindByRegistration(ctx context.Context, registrationNumber string) (int, bool) {
	tracer := ip.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "slot_pool.find_by_registration",
		trace.WithAttributes(
			attribute.String("registration_number", registrationNumber),
		))
	defer span.End()

	start := time.Now()

	slotNumber, found := ip.Pool.FindByRegistration(registrationNumber)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "find_by_registration"),
	}

	if found {
		span.SetAttributes(attribute.Int("found_slot_number", slotNumber))
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int("slot_number", slotNumber),
		))
		labels = append(labels, attribute.String("status", "found"))
	} else {
		span.AddEvent("vehicle_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	}

	ip.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return slotNumber, found
}
