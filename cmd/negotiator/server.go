package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

// newMux serves the Prometheus metrics and a liveness endpoint.
func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// startMetricsServer serves newMux on addr in the background.
func startMetricsServer(addr string) {
	klog.InfoS("Starting metrics server", "address", addr)
	go func() {
		if err := http.ListenAndServe(addr, newMux()); err != nil {
			klog.ErrorS(err, "Metrics server failed")
		}
	}()
}
