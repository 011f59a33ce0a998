package internal

import (
	"context"
	"sync"
)

// Lightweight telemetry hook layer. Service wiring may register an emitter
// backed by a real meter; by default every emit is a no-op.

type telemetryEmitter func(ctx context.Context, name string, labels map[string]string, value any)

func noopEmitter(ctx context.Context, name string, labels map[string]string, value any) {}

var (
	teleMu   sync.Mutex
	teleImpl telemetryEmitter = noopEmitter
)

// RegisterTelemetryEmitter registers a custom emitter function. Passing nil
// restores the no-op emitter.
func RegisterTelemetryEmitter(fn telemetryEmitter) {
	teleMu.Lock()
	defer teleMu.Unlock()
	if fn == nil {
		teleImpl = noopEmitter
		return
	}
	teleImpl = fn
}

func currentEmitter() telemetryEmitter {
	teleMu.Lock()
	defer teleMu.Unlock()
	return teleImpl
}

// EmitImageOutcome counts one annotation by how its image resolution ended.
// name: "listmeta_image_outcome_total" with label {"outcome": "<outcome>"}
func EmitImageOutcome(ctx context.Context, outcome ImageOutcome) {
	fn := currentEmitter()
	fn(ctx, "listmeta_image_outcome_total", map[string]string{"outcome": string(outcome)}, int64(1))
}

// EmitRequestLatency records page handler latency in milliseconds.
// name: "listmeta_request_latency_ms" with label {"route": "<route>"}
func EmitRequestLatency(ctx context.Context, route string, ms int64) {
	fn := currentEmitter()
	fn(ctx, "listmeta_request_latency_ms", map[string]string{"route": route}, ms)
}
