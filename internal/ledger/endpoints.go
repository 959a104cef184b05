package ledger

import (
	"context"
	"time"

	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/solana"
	"solana-holder-lab/internal/telemetry"
)

// ServiceRPC is the telemetry service name for ledger RPC calls.
const ServiceRPC = "solana-rpc"

// MethodCredits is the provider credit cost charged per RPC method.
var MethodCredits = map[string]int{
	"getProgramAccounts":      10,
	"getMultipleAccounts":     1,
	"getSignaturesForAddress": 1,
}

// EndpointConfig names an RPC URL.
type EndpointConfig struct {
	Name string
	URL  string
}

// Observer returns an RPC call observer emitting one usage event per request.
func Observer(r telemetry.Recorder, endpointName string) solana.CallObserver {
	return func(ctx context.Context, method string, httpStatus int, latency time.Duration, err error) {
		event := domain.UsageEvent{
			Service:    ServiceRPC,
			Endpoint:   method,
			HTTPStatus: httpStatus,
			LatencyMs:  latency.Milliseconds(),
			Credits:    MethodCredits[method],
			Status:     telemetry.StatusFor(ctx, httpStatus, err),
			Metadata:   map[string]string{"rpc": endpointName},
		}
		if err != nil {
			event.Metadata["error"] = err.Error()
		}
		telemetry.Emit(ctx, r, event)
	}
}

// DialEndpoints builds HTTP RPC clients for cfgs, each reporting usage to r.
func DialEndpoints(cfgs []EndpointConfig, r telemetry.Recorder, opts ...solana.ClientOption) []Endpoint {
	endpoints := make([]Endpoint, 0, len(cfgs))
	for _, cfg := range cfgs {
		clientOpts := append([]solana.ClientOption{
			solana.WithTimeout(DefaultQueryTimeout),
			solana.WithObserver(Observer(r, cfg.Name)),
		}, opts...)
		endpoints = append(endpoints, Endpoint{
			Name:   cfg.Name,
			Client: solana.NewHTTPClient(cfg.URL, clientOpts...),
		})
	}
	return endpoints
}
