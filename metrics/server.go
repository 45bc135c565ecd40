package metrics

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the encoded contents of a prometheus registry over HTTP.
type Server struct {
	srv *http.Server
}

// NewServer creates a Server exposing the registry on the given network
// address.
func NewServer(addr string, registry *prometheus.Registry) *Server {
	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		srv: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
}

// ListenAndServe blocks serving metrics requests. Like the pollers, it is
// expected to run until the process is terminated; returning at all is
// treated as a failure by the supervisor.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}
