package handler

import (
	"avifd/internal/core/domain"
	"avifd/internal/core/port"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderCache     = "X-Cache"
)

const usage = "To convert and resize an image, make a GET request to /convert with the following query parameters: \n" +
	"url: The URL of the image to convert. \n" +
	"width: The desired width of the image. If not provided, the original width will be used. \n" +
	"height: The desired height of the image. If not provided, the original height will be used."

type HTTP struct {
	converter port.ImageConverter
	staticDir string
	metrics   http.Handler
}

// NewHTTP builds the HTTP surface. metrics may be nil to leave /metrics unregistered.
func NewHTTP(converter port.ImageConverter, staticDir string, metrics http.Handler) *HTTP {
	return &HTTP{converter: converter, staticDir: staticDir, metrics: metrics}
}

func (h *HTTP) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestID)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/", h.Index)
	r.Get("/healthz", h.Health)
	r.Get("/convert", h.Convert)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir))))

	return r
}

func (h *HTTP) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(usage)); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("failed to write index response")
	}
}

func (h *HTTP) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("ok")); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("failed to write health response")
	}
}

func (h *HTTP) Convert(w http.ResponseWriter, r *http.Request) {
	req, err := domain.ParseImageRequest(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.converter.Convert(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", res.Image.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Image.Data)))
	w.Header().Set(HeaderCache, string(res.Status))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(res.Image.Data); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("failed to write image response")
	}
}

// StatusFor maps a conversion error to the HTTP status returned to the client.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFetchFailed), errors.Is(err, domain.ErrReadBodyFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrDecodeFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	hlog.FromRequest(r).Warn().
		Err(err).
		Str("kind", string(domain.Kind(err))).
		Int("status", status).
		Msg("request failed")

	http.Error(w, err.Error(), status)
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.NewV4()
		if err != nil {
			log.Warn().Err(err).Msg("could not generate request id")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set(HeaderRequestID, id.String())
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("requestId", id.String())
		})

		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("handled request")
}
