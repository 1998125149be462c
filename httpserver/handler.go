package httpserver

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/attestd/cloud-secure-area/interfaces"
	"github.com/attestd/cloud-secure-area/metrics"
	"github.com/attestd/cloud-secure-area/securearea"
)

// maxCommandBodySize bounds command request bodies. Secure area commands
// are small binary structures, a megabyte is far beyond any legitimate one.
const maxCommandBodySize = 1 << 20

// Handler implements the HTTP API for a secure area service.
type Handler struct {
	service *securearea.Service
	log     *slog.Logger
}

// NewHandler creates an HTTP handler backed by the given service.
func NewHandler(service *securearea.Service, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// HandleCommand forwards a raw binary command to the service and writes the
// delegate's status code and response bytes back unmodified.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBodySize+1))
	if err != nil {
		h.log.Debug("Failed to read command body", "err", err)
		metrics.CommandErrorsTotal.Inc()
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > maxCommandBodySize {
		metrics.CommandErrorsTotal.Inc()
		http.Error(w, "command body too large", http.StatusRequestEntityTooLarge)
		return
	}

	caller := interfaces.CallerIdentity{Origin: r.RemoteAddr}
	status, resp, err := h.service.HandleCommand(r.Context(), body, caller)
	if err != nil {
		metrics.CommandErrorsTotal.Inc()
		if errors.Is(err, securearea.ErrNotInitialized) {
			http.Error(w, "service not initialized", http.StatusServiceUnavailable)
			return
		}
		h.log.Error("Command processing failed", "err", err, "origin", caller.Origin)
		http.Error(w, "command processing failed", http.StatusInternalServerError)
		return
	}

	metrics.CommandsTotal.WithLabelValues(fmt.Sprintf("%d", status)).Inc()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(status)
	w.Write(resp)
}

var statusPageTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head><title>Cloud Secure Area</title></head>
<body>
<h1>Cloud Secure Area</h1>
<h2>Attestation Root</h2>
<p>Issuer: {{.AttestationIssuer}} ({{.AttestationAlgorithm}})</p>
<pre>{{.AttestationChain}}</pre>
<h2>Cloud Binding Key Attestation Root</h2>
<p>Issuer: {{.CloudBindingIssuer}} ({{.CloudBindingAlgorithm}})</p>
<pre>{{.CloudBindingChain}}</pre>
</body>
</html>
`))

type statusPageData struct {
	AttestationIssuer     string
	AttestationAlgorithm  string
	AttestationChain      string
	CloudBindingIssuer    string
	CloudBindingAlgorithm string
	CloudBindingChain     string
}

// HandleStatus renders the service's public root descriptions as HTML.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	desc, err := h.service.DescribeRoots()
	if err != nil {
		if errors.Is(err, securearea.ErrNotInitialized) {
			http.Error(w, "service not initialized", http.StatusServiceUnavailable)
			return
		}
		h.log.Error("Failed to describe roots", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := statusPageData{
		AttestationIssuer:     desc.AttestationIssuer,
		AttestationAlgorithm:  desc.AttestationAlgorithm.String(),
		AttestationChain:      string(desc.AttestationChain),
		CloudBindingIssuer:    desc.CloudBindingIssuer,
		CloudBindingAlgorithm: desc.CloudBindingAlgorithm.String(),
		CloudBindingChain:     string(desc.CloudBindingChain),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := statusPageTemplate.Execute(w, data); err != nil {
		h.log.Error("Failed to render status page", "err", err)
	}
}
