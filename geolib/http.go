package geolib

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxRequestBodySize = 1 << 20

type listResponse[T any] struct {
	Results []T `json:"results"`
}

type httpHandler struct {
	ingester *Ingester
	store    Store
}

func (h httpHandler) createGeoLocation(w http.ResponseWriter, req *http.Request) {
	key, err := ParseLookupKey(req.URL.Query())
	if err != nil {
		h.sendError(w, err, "Invalid lookup parameters")

		return
	}

	geo, err := h.ingester.Ingest(req.Context(), key)
	if err != nil {
		h.sendError(w, err, "Cannot ingest a geolocation")

		return
	}

	h.encodeJSON(w, http.StatusCreated, geo)
}

func (h httpHandler) listGeoLocations(w http.ResponseWriter, req *http.Request) {
	geos, err := h.store.ListGeoLocations(req.Context())
	if err != nil {
		h.sendError(w, err, "Cannot list geolocations")

		return
	}

	h.encodeList(w, geos)
}

func (h httpHandler) getGeoLocation(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	geo, err := h.store.GetGeoLocation(req.Context(), id)
	if err != nil {
		h.sendError(w, err, "Cannot get a geolocation")

		return
	}

	h.encodeJSON(w, http.StatusOK, geo)
}

func (h httpHandler) deleteGeoLocation(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	if err := h.store.DeleteGeoLocation(req.Context(), id); err != nil {
		h.sendError(w, err, "Cannot delete a geolocation")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h httpHandler) listLocations(w http.ResponseWriter, req *http.Request) {
	locations, err := h.store.ListLocations(req.Context())
	if err != nil {
		h.sendError(w, err, "Cannot list locations")

		return
	}

	h.encodeList(w, locations)
}

func (h httpHandler) getLocation(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	location, err := h.store.GetLocation(req.Context(), id)
	if err != nil {
		h.sendError(w, err, "Cannot get a location")

		return
	}

	h.encodeJSON(w, http.StatusOK, location)
}

func (h httpHandler) deleteLocation(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	if err := h.store.DeleteLocation(req.Context(), id); err != nil {
		h.sendError(w, err, "Cannot delete a location")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h httpHandler) listLanguages(w http.ResponseWriter, req *http.Request) {
	languages, err := h.store.ListLanguages(req.Context())
	if err != nil {
		h.sendError(w, err, "Cannot list languages")

		return
	}

	h.encodeList(w, languages)
}

func (h httpHandler) updateGeoLocation(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	body, ok := h.readBody(w, req)
	if !ok {
		return
	}

	payload, err := ParsePayload(body)
	if err != nil {
		h.sendErrorStatus(w, err, "JSON parse error", http.StatusBadRequest)

		return
	}

	current, err := h.store.GetGeoLocation(req.Context(), id)
	if err != nil {
		h.sendError(w, err, "Cannot get a geolocation")

		return
	}

	record, err := Normalize(payload)
	if err != nil {
		h.sendError(w, err, "Invalid geolocation")

		return
	}

	if payload.Shape() == ShapeCompact {
		record.IP = current.IP
		record.IPType = current.IPType
	}

	h.saveGeoLocation(w, req, id, record)
}

func (h httpHandler) patchGeoLocation(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	patch := &RichPayload{}
	if !h.readJSON(w, req, patch) {
		return
	}

	current, err := h.store.GetGeoLocation(req.Context(), id)
	if err != nil {
		h.sendError(w, err, "Cannot get a geolocation")

		return
	}

	record, err := NormalizePatch(current, patch)
	if err != nil {
		h.sendError(w, err, "Invalid geolocation")

		return
	}

	h.saveGeoLocation(w, req, id, record)
}

func (h httpHandler) saveGeoLocation(w http.ResponseWriter, req *http.Request, id int64, record *Record) {
	geo, err := h.store.UpdateGeoLocation(req.Context(), id, record)
	if err != nil {
		h.sendError(w, err, "Cannot update a geolocation")

		return
	}

	h.encodeJSON(w, http.StatusOK, geo)
}

func (h httpHandler) createLocation(w http.ResponseWriter, req *http.Request) {
	changes := &LocationChanges{}
	if !h.readJSON(w, req, changes) {
		return
	}

	if err := NormalizeLocation(changes); err != nil {
		h.sendError(w, err, "Invalid location")

		return
	}

	location, err := h.store.CreateLocation(req.Context(), changes)
	if err != nil {
		h.sendError(w, err, "Cannot create a location")

		return
	}

	h.encodeJSON(w, http.StatusCreated, location)
}

// updateLocation serves both PUT and PATCH: location has no required
// fields so full and partial updates are the same.
func (h httpHandler) updateLocation(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	changes := &LocationChanges{}
	if !h.readJSON(w, req, changes) {
		return
	}

	if err := NormalizeLocation(changes); err != nil {
		h.sendError(w, err, "Invalid location")

		return
	}

	location, err := h.store.UpdateLocation(req.Context(), id, changes)
	if err != nil {
		h.sendError(w, err, "Cannot update a location")

		return
	}

	h.encodeJSON(w, http.StatusOK, location)
}

func (h httpHandler) createLanguage(w http.ResponseWriter, req *http.Request) {
	parsed := RichLanguage{}
	if !h.readJSON(w, req, &parsed) {
		return
	}

	draft, err := NormalizeLanguage(parsed)
	if err != nil {
		h.sendError(w, err, "Invalid language")

		return
	}

	language, err := h.store.CreateLanguage(req.Context(), draft)
	if err != nil {
		h.sendError(w, err, "Cannot create a language")

		return
	}

	h.encodeJSON(w, http.StatusCreated, language)
}

func (h httpHandler) getLanguage(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	language, err := h.store.GetLanguage(req.Context(), id)
	if err != nil {
		h.sendError(w, err, "Cannot get a language")

		return
	}

	h.encodeJSON(w, http.StatusOK, language)
}

func (h httpHandler) updateLanguage(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	parsed := RichLanguage{}
	if !h.readJSON(w, req, &parsed) {
		return
	}

	draft, err := NormalizeLanguage(parsed)
	if err != nil {
		h.sendError(w, err, "Invalid language")

		return
	}

	h.saveLanguage(w, req, id, draft)
}

func (h httpHandler) patchLanguage(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	parsed := RichLanguage{}
	if !h.readJSON(w, req, &parsed) {
		return
	}

	current, err := h.store.GetLanguage(req.Context(), id)
	if err != nil {
		h.sendError(w, err, "Cannot get a language")

		return
	}

	draft, err := NormalizeLanguagePatch(current, parsed)
	if err != nil {
		h.sendError(w, err, "Invalid language")

		return
	}

	h.saveLanguage(w, req, id, draft)
}

func (h httpHandler) saveLanguage(w http.ResponseWriter, req *http.Request, id int64, draft LanguageDraft) {
	language, err := h.store.UpdateLanguage(req.Context(), id, draft)
	if err != nil {
		h.sendError(w, err, "Cannot update a language")

		return
	}

	h.encodeJSON(w, http.StatusOK, language)
}

func (h httpHandler) deleteLanguage(w http.ResponseWriter, req *http.Request) {
	id, ok := h.getID(w, req)
	if !ok {
		return
	}

	if err := h.store.DeleteLanguage(req.Context(), id); err != nil {
		h.sendError(w, err, "Cannot delete a language")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h httpHandler) readBody(w http.ResponseWriter, req *http.Request) ([]byte, bool) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		h.sendErrorStatus(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBodySize))
	if err != nil {
		h.sendErrorStatus(w, err, "Cannot read request body", http.StatusBadRequest)

		return nil, false
	}

	return body, true
}

func (h httpHandler) readJSON(w http.ResponseWriter, req *http.Request, target any) bool {
	body, ok := h.readBody(w, req)
	if !ok {
		return false
	}

	if err := json.Unmarshal(body, target); err != nil {
		h.sendErrorStatus(w, err, "JSON parse error", http.StatusBadRequest)

		return false
	}

	return true
}

func (h httpHandler) notFound(w http.ResponseWriter, _ *http.Request) {
	h.sendError(w, ErrNotFound, "")
}

func (h httpHandler) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	h.sendErrorStatus(w, nil, "This HTTP method is not allowed", http.StatusMethodNotAllowed)
}

func (h httpHandler) getID(w http.ResponseWriter, req *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.sendError(w, ErrNotFound, "")

		return 0, false
	}

	return id, true
}

func (h httpHandler) encodeList(w http.ResponseWriter, data any) {
	switch value := data.(type) {
	case []GeoLocation:
		if value == nil {
			value = []GeoLocation{}
		}

		h.encodeJSON(w, http.StatusOK, listResponse[GeoLocation]{Results: value})
	case []Location:
		if value == nil {
			value = []Location{}
		}

		h.encodeJSON(w, http.StatusOK, listResponse[Location]{Results: value})
	case []Language:
		if value == nil {
			value = []Language{}
		}

		h.encodeJSON(w, http.StatusOK, listResponse[Language]{Results: value})
	}
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, statusCode int, data any) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string) {
	e := newHTTPError(err, message)

	h.encodeJSON(w, e.StatusCode(), e)
}

func (h httpHandler) sendErrorStatus(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	h.encodeJSON(w, e.StatusCode(), e)
}

// NewHTTPHandler returns an HTTP API of the service. If requestTimeout
// is positive, each request gets a context with this timeout.
func NewHTTPHandler(ingester *Ingester, store Store, requestTimeout time.Duration) http.Handler {
	handler := httpHandler{
		ingester: ingester,
		store:    store,
	}
	router := chi.NewRouter()

	router.Use(middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.StripSlashes)

	if requestTimeout > 0 {
		router.Use(middleware.Timeout(requestTimeout))
	}

	router.NotFound(handler.notFound)
	router.MethodNotAllowed(handler.methodNotAllowed)

	router.Route("/api", func(r chi.Router) {
		r.Route("/geolocations", func(r chi.Router) {
			r.Post("/", handler.createGeoLocation)
			r.Get("/", handler.listGeoLocations)
			r.Get("/{id}", handler.getGeoLocation)
			r.Put("/{id}", handler.updateGeoLocation)
			r.Patch("/{id}", handler.patchGeoLocation)
			r.Delete("/{id}", handler.deleteGeoLocation)
		})
		r.Route("/locations", func(r chi.Router) {
			r.Post("/", handler.createLocation)
			r.Get("/", handler.listLocations)
			r.Get("/{id}", handler.getLocation)
			r.Put("/{id}", handler.updateLocation)
			r.Patch("/{id}", handler.updateLocation)
			r.Delete("/{id}", handler.deleteLocation)
		})
		r.Route("/languages", func(r chi.Router) {
			r.Get("/", handler.listLanguages)
			r.Post("/", handler.createLanguage)
			r.Get("/{id}", handler.getLanguage)
			r.Put("/{id}", handler.updateLanguage)
			r.Patch("/{id}", handler.patchLanguage)
			r.Delete("/{id}", handler.deleteLanguage)
		})
	})

	return router
}
