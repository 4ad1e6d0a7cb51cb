// Package api serves the validation engine over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"datapack/internal/domain"
	"datapack/internal/middleware"
	"datapack/internal/standard"
	"datapack/internal/table"
	"datapack/internal/validation"
)

// Handler serves the standards and validation endpoints.
type Handler struct {
	loader         *standard.Loader
	defaultVersion string
	sampleSize     int
	logger         *slog.Logger
}

// NewHandler returns a Handler. sampleSize overrides the rule documents'
// schema-matching sample size when positive.
func NewHandler(loader *standard.Loader, defaultVersion string, sampleSize int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{loader: loader, defaultVersion: defaultVersion, sampleSize: sampleSize, logger: logger}
}

// StandardsList is the body of GET /v1/standards.
type StandardsList struct {
	Default  string   `json:"default"`
	Versions []string `json:"versions"`
}

// DataPayload is row-major tabular data.
type DataPayload struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Metadata map[string]any `json:"metadata"`
	Data     *DataPayload   `json:"data,omitempty"`
	// Mappings is either a list of mapping objects or an object from column
	// name to concept; see validation.DecodeMappings.
	Mappings any `json:"mappings,omitempty"`
}

// ValidateResponse is the body of a successful POST /v1/validate.
type ValidateResponse struct {
	validation.Report
	StandardVersion string `json:"standardVersion"`
}

// Mount registers the routes on r.
func (h *Handler) Mount(r chi.Router, v1 ...func(http.Handler) http.Handler) {
	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Use(v1...)
		r.Get("/standards", h.listStandards)
		r.Get("/standards/{version}", h.getStandard)
		r.Post("/validate", h.validate)
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listStandards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StandardsList{
		Default:  h.defaultVersion,
		Versions: h.loader.ListAvailableVersions(),
	})
}

func (h *Handler) getStandard(w http.ResponseWriter, r *http.Request) {
	spec, err := h.loader.Load(chi.URLParam(r, "version"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := spec.Document()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("version")
	if version == "" {
		version = h.defaultVersion
	}
	spec, err := h.loader.Load(version)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := decodeValidateRequest(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Metadata == nil {
		h.writeError(w, r, domain.ErrValidation("metadata is required"))
		return
	}

	var tbl *table.Table
	if req.Data != nil {
		tbl, err = table.FromRows(req.Data.Columns, req.Data.Rows)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	mappings, err := validation.DecodeMappings(req.Mappings)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	opts := []validation.Option{validation.WithLogger(h.logger.With(
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"key", middleware.KeyIDFromContext(r.Context())))}
	if h.sampleSize > 0 {
		opts = append(opts, validation.WithSampleSize(h.sampleSize))
	}
	result := validation.New(spec, opts...).ValidateAll(req.Metadata, tbl, mappings)

	writeJSON(w, http.StatusOK, ValidateResponse{Report: result.Report(), StandardVersion: spec.Version})
}

// decodeValidateRequest decodes the body keeping integral JSON numbers as
// int64 so that integer columns are recognised.
func decodeValidateRequest(body io.Reader) (*ValidateRequest, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var req ValidateRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, domain.ErrValidation("invalid request body: %v", err)
	}
	req.Metadata, _ = normalizeNumbers(req.Metadata).(map[string]any)
	req.Mappings = normalizeNumbers(req.Mappings)
	if req.Data != nil {
		for _, row := range req.Data.Rows {
			for j, v := range row {
				row[j] = normalizeNumbers(v)
			}
		}
	}
	return &req, nil
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, item := range x {
			x[k] = normalizeNumbers(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = normalizeNumbers(item)
		}
		return x
	}
	return v
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", middleware.RequestIDFromContext(r.Context()))
		msg = "internal error"
	}
	writeJSON(w, status, Error{Code: status, Message: msg, RequestID: middleware.RequestIDFromContext(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
