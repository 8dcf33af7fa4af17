package lambda

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stratuslocal/stratus/internal/logger"
	"github.com/stratuslocal/stratus/internal/wire"
	"github.com/stratuslocal/stratus/pkg/metrics"
)

// Handler serves the Lambda REST protocol. Unlike the JSON-target services
// the action is selected by path and method (/2015-03-31/functions/...).
type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) http.Handler {
	h := &Handler{registry: registry}
	r := chi.NewRouter()
	r.Use(h.instrument)

	r.Route("/2015-03-31/functions", func(r chi.Router) {
		r.Post("/", h.createFunction)
		r.Get("/", h.listFunctions)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getFunction)
			r.Delete("/", h.deleteFunction)
			r.Put("/code", h.updateFunctionCode)
			r.Put("/configuration", h.updateFunctionConfiguration)
			r.Post("/invocations", h.invoke)
			r.Post("/versions", h.publishVersion)
			r.Get("/versions", h.listVersions)
			r.Post("/policy", h.addPermission)
			r.Get("/policy", h.getPolicy)
			r.Delete("/policy/{sid}", h.removePermission)
			r.Post("/aliases", h.createAlias)
			r.Get("/aliases", h.listAliases)
			r.Get("/aliases/{alias}", h.getAlias)
			r.Put("/aliases/{alias}", h.updateAlias)
			r.Delete("/aliases/{alias}", h.deleteAlias)
		})
	})
	r.Route("/2015-03-31/event-source-mappings", func(r chi.Router) {
		r.Post("/", h.createMapping)
		r.Get("/", h.listMappings)
		r.Get("/{uuid}", h.getMapping)
		r.Put("/{uuid}", h.updateMapping)
		r.Delete("/{uuid}", h.deleteMapping)
	})
	// The CLI and newer SDKs address tags under the 2017-03-31 prefix.
	for _, prefix := range []string{"/2015-03-31/tags", "/2017-03-31/tags"} {
		r.Route(prefix+"/{arn}", func(r chi.Router) {
			r.Post("/", h.tagResource)
			r.Delete("/", h.untagResource)
			r.Get("/", h.listTags)
		})
	}
	return r
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		metrics.ObserveRequest("lambda", r.Method+" "+r.URL.Path, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (h *Handler) error(w http.ResponseWriter, err error) {
	ae := wire.AsAPIError(err)
	logger.Debug("request failed", "service", "lambda", "code", ae.Code, "error", ae.Message)
	w.Header().Set("X-Amzn-ErrorType", ae.Code)
	wire.WriteJSONError(w, ae)
}

func (h *Handler) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errInvalidParameterValue("unreadable body: %v", err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errInvalidParameterValue("malformed request: %v", err)
	}
	return nil
}

func (h *Handler) createFunction(w http.ResponseWriter, r *http.Request) {
	var req CreateFunctionRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	cfg, err := h.registry.CreateFunction(&req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusCreated, cfg)
}

func (h *Handler) listFunctions(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.registry.ListFunctions())
}

func (h *Handler) getFunction(w http.ResponseWriter, r *http.Request) {
	resp, err := h.registry.GetFunction(chi.URLParam(r, "name"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, resp)
}

func (h *Handler) deleteFunction(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.DeleteFunction(chi.URLParam(r, "name")); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateFunctionCode(w http.ResponseWriter, r *http.Request) {
	var req UpdateFunctionCodeRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	cfg, err := h.registry.UpdateFunctionCode(chi.URLParam(r, "name"), &req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, cfg)
}

func (h *Handler) updateFunctionConfiguration(w http.ResponseWriter, r *http.Request) {
	var req UpdateFunctionConfigurationRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	cfg, err := h.registry.UpdateFunctionConfiguration(chi.URLParam(r, "name"), &req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, cfg)
}

func (h *Handler) invoke(w http.ResponseWriter, r *http.Request) {
	status, payload, err := h.registry.Invoke(chi.URLParam(r, "name"),
		r.Header.Get("X-Amz-Invocation-Type"))
	if err != nil {
		h.error(w, err)
		return
	}
	w.Header().Set("X-Amz-Executed-Version", "$LATEST")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(payload))
}

func (h *Handler) publishVersion(w http.ResponseWriter, r *http.Request) {
	var req PublishVersionRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	cfg, err := h.registry.PublishVersion(chi.URLParam(r, "name"), &req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusCreated, cfg)
}

func (h *Handler) listVersions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.registry.ListVersions(chi.URLParam(r, "name"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, resp)
}

func (h *Handler) addPermission(w http.ResponseWriter, r *http.Request) {
	var req AddPermissionRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	resp, err := h.registry.AddPermission(chi.URLParam(r, "name"), &req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusCreated, resp)
}

func (h *Handler) removePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.RemovePermission(chi.URLParam(r, "name"), chi.URLParam(r, "sid")); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getPolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := h.registry.GetPolicy(chi.URLParam(r, "name"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, resp)
}

func (h *Handler) createAlias(w http.ResponseWriter, r *http.Request) {
	var req CreateAliasRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	alias, err := h.registry.CreateAlias(chi.URLParam(r, "name"), &req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusCreated, alias)
}

func (h *Handler) getAlias(w http.ResponseWriter, r *http.Request) {
	alias, err := h.registry.GetAlias(chi.URLParam(r, "name"), chi.URLParam(r, "alias"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, alias)
}

func (h *Handler) updateAlias(w http.ResponseWriter, r *http.Request) {
	var req UpdateAliasRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	alias, err := h.registry.UpdateAlias(chi.URLParam(r, "name"), chi.URLParam(r, "alias"), &req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, alias)
}

func (h *Handler) deleteAlias(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.DeleteAlias(chi.URLParam(r, "name"), chi.URLParam(r, "alias")); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAliases(w http.ResponseWriter, r *http.Request) {
	resp, err := h.registry.ListAliases(chi.URLParam(r, "name"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, resp)
}

func (h *Handler) createMapping(w http.ResponseWriter, r *http.Request) {
	var req CreateEventSourceMappingRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	cfg, err := h.registry.CreateEventSourceMapping(&req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusAccepted, cfg)
}

func (h *Handler) getMapping(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.registry.GetEventSourceMapping(chi.URLParam(r, "uuid"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, cfg)
}

func (h *Handler) updateMapping(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventSourceMappingRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	cfg, err := h.registry.UpdateEventSourceMapping(chi.URLParam(r, "uuid"), &req)
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusAccepted, cfg)
}

func (h *Handler) deleteMapping(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.registry.DeleteEventSourceMapping(chi.URLParam(r, "uuid"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusAccepted, cfg)
}

func (h *Handler) listMappings(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.registry.ListEventSourceMappings())
}

func (h *Handler) tagResource(w http.ResponseWriter, r *http.Request) {
	var req TagResourceRequest
	if err := decodeBody(r, &req); err != nil {
		h.error(w, err)
		return
	}
	if err := h.registry.TagResource(chi.URLParam(r, "arn"), req.Tags); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) untagResource(w http.ResponseWriter, r *http.Request) {
	keys := r.URL.Query()["tagKeys"]
	if err := h.registry.UntagResource(chi.URLParam(r, "arn"), keys); err != nil {
		h.error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	resp, err := h.registry.ListTags(chi.URLParam(r, "arn"))
	if err != nil {
		h.error(w, err)
		return
	}
	h.respond(w, http.StatusOK, resp)
}
