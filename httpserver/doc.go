/*
Package httpserver implements the HTTP surface of the cloud secure area
service.

It exposes a single command endpoint and a human-readable status page:

  - POST /: raw binary secure-area command; the body is forwarded to the
    delegate command processor together with the caller's network origin,
    and the processor's status code and response bytes are passed through
    verbatim.
  - GET /: HTML status page listing the attestation and cloud binding
    certificate chains in PEM form.

Health and diagnostic endpoints follow the usual layout:

  - GET /livez: liveness check
  - GET /readyz: readiness check (reflects drain state)
  - GET /drain: mark the server not ready, for load balancer rotation
  - GET /undrain: mark the server ready again
  - /debug: pprof, when enabled

Prometheus metrics are served on a separate listener so that scrapes do not
contend with command traffic.
*/
package httpserver
