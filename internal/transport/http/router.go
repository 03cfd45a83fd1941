package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"groupauth/internal/domain"
	"groupauth/internal/dto"
	"groupauth/internal/netutil"
	"groupauth/internal/observability/middleware"
	"groupauth/internal/service"
	"groupauth/internal/service/impl"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	registration   service.RegistrationService
	authentication service.AuthenticationService
	sessions       service.SessionService
	codec          *CookieCodec
	trustProxy     bool
	log            *slog.Logger
}

func NewHandler(registration service.RegistrationService, authentication service.AuthenticationService, sessions service.SessionService, codec *CookieCodec, trustProxy bool, log *slog.Logger) *Handler {
	return &Handler{
		registration:   registration,
		authentication: authentication,
		sessions:       sessions,
		codec:          codec,
		trustProxy:     trustProxy,
		log:            log,
	}
}

func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestAndTrace)
	r.Use(middleware.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/registration-options", h.registrationOptions)
		r.Post("/register", h.register)
		r.Post("/authentication-options", h.authenticationOptions)
		r.Post("/authenticate", h.authenticate)
		r.Post("/end-session", h.endSession)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.codec, h.sessions))
			r.Get("/session", h.session)
		})
	})

	return r
}

func (h *Handler) registrationOptions(w http.ResponseWriter, r *http.Request) {
	var req dto.RegistrationOptionsRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.registration.Options(r.Context(), req.InvitationCode)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.registration.Register(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if resp.Verified {
		if groupID, err := domain.ParseGroupID(resp.GroupID); err == nil {
			h.codec.SetGroup(w, groupID)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) authenticationOptions(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthenticationOptionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	var (
		resp *dto.AuthenticationOptionsResponse
		err  error
	)
	if groupID, ok := h.resolveGroupID(r, req.GroupID); ok {
		resp, err = h.authentication.Options(r.Context(), groupID)
	} else if strings.TrimSpace(req.InvitationCode) != "" {
		resp, err = h.authentication.OptionsByInvitationCode(r.Context(), req.InvitationCode)
	} else {
		writeError(w, http.StatusUnprocessableEntity, "missing group id or invitation code")
		return
	}
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthenticateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if groupID, ok := h.resolveGroupID(r, req.GroupID); ok {
		req.GroupID = groupID.String()
	}
	resp, sess, err := h.authentication.Authenticate(r.Context(), req, h.clientIP(r), netutil.TruncateUserAgent(r.UserAgent()))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	if resp.Verified && sess != nil {
		if err := h.codec.SetSession(w, sess.ID, sess.ExpiresAt); err != nil {
			h.serviceError(w, r, err)
			return
		}
		h.codec.SetGroup(w, sess.GroupID)
	} else {
		// A failed ceremony leaves the client with no cookies at all.
		h.codec.InvalidateSession(w)
		h.codec.InvalidateGroup(w)
	}
	writeJSON(w, http.StatusOK, resp)
}

// endSession is idempotent: ending with no cookie, a bad cookie, or an
// already-ended session still clears both cookies and returns 204.
func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	if sessionID, err := h.codec.ReadSessionID(r); err == nil {
		if err := h.sessions.End(r.Context(), sessionID); err != nil {
			h.serviceError(w, r, err)
			return
		}
	}
	h.codec.InvalidateSession(w)
	h.codec.InvalidateGroup(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	group, ok := GroupFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, dto.SessionResponse{
		GroupID: group.ID.String(),
		Name:    group.Name,
	})
}

// resolveGroupID prefers an explicit group ID in the request body and falls
// back to the script-readable group cookie.
func (h *Handler) resolveGroupID(r *http.Request, fromBody string) (domain.GroupID, bool) {
	if s := strings.TrimSpace(fromBody); s != "" {
		id, err := domain.ParseGroupID(s)
		return id, err == nil
	}
	return h.codec.ReadGroupID(r)
}

func (h *Handler) clientIP(r *http.Request) string {
	if h.trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first := strings.TrimSpace(strings.Split(fwd, ",")[0])
			if ip, ok := netutil.ClientIP(first); ok {
				return ip
			}
		}
	}
	ip, _ := netutil.ClientIP(r.RemoteAddr)
	return ip
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "malformed request body")
		return false
	}
	return true
}

func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, impl.ErrEmptyInvitationCode),
		errors.Is(err, impl.ErrMalformedGroupID),
		errors.Is(err, impl.ErrMalformedCredential):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "group not found")
	case errors.Is(err, domain.ErrNoAuthenticators):
		writeError(w, http.StatusNotFound, "no authenticators registered")
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err,
			"request_id", middleware.RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
