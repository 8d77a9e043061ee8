// Package web serves the storefront widget over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/common/validation"
	"storefront-stylist/internal/storefront"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const UserCookie = "storefront_user"

// HealthCheck reports a dependency's readiness.
type HealthCheck func(ctx context.Context) error

type Config struct {
	DefaultUserID string
	CheckTimeout  time.Duration
}

type Server struct {
	config   Config
	sessions *storefront.Sessions
	checks   map[string]HealthCheck
	logger   logger.Logger
	router   *mux.Router
}

// PersonalizeForm is the body of POST /api/personalize and the form fields of
// POST /personalize.
type PersonalizeForm struct {
	StyleProfile string `json:"style_profile" validate:"max=4000"`
	Wardrobe     string `json:"wardrobe" validate:"max=4000"`
}

type errorResponse struct {
	Error   string                       `json:"error"`
	Details []validation.ValidationError `json:"details,omitempty"`
}

func NewServer(config Config, sessions *storefront.Sessions, checks map[string]HealthCheck, log logger.Logger) *Server {
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = 3 * time.Second
	}
	s := &Server{
		config:   config,
		sessions: sessions,
		checks:   checks,
		logger:   log.WithFields(map[string]interface{}{"component": "storefront-web"}),
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/personalize", s.handlePersonalizeForm).Methods(http.MethodPost)
	s.router.HandleFunc("/api/view", s.handleView).Methods(http.MethodGet)
	s.router.HandleFunc("/api/personalize", s.handlePersonalizeAPI).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// session resolves the visitor's session, minting a cookie on first visit
// when no default user is configured. New sessions run the page-load flow.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *storefront.Session {
	var userID string
	if c, err := r.Cookie(UserCookie); err == nil && c.Value != "" {
		userID = c.Value
	} else if s.config.DefaultUserID != "" {
		userID = s.config.DefaultUserID
	} else {
		userID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     UserCookie,
			Value:    userID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		})
	}

	sess, created := s.sessions.Get(userID)
	if created {
		if err := sess.Load(r.Context()); err != nil {
			s.logger.Warn("page load personalization skipped", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}
	return sess
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := storefront.Render(s.session(w, r).TakeView())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, page); err != nil {
		s.logger.Error("render page failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) handlePersonalizeForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form := PersonalizeForm{
		StyleProfile: r.PostFormValue("style_profile"),
		Wardrobe:     r.PostFormValue("wardrobe"),
	}
	if result := validation.Struct(form); !result.Valid {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: result.Errors})
		return
	}

	sess := s.session(w, r)
	s.submit(r.Context(), sess, form)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, storefront.Render(s.session(w, r).View()))
}

func (s *Server) handlePersonalizeAPI(w http.ResponseWriter, r *http.Request) {
	var form PersonalizeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if result := validation.Struct(form); !result.Valid {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Details: result.Errors})
		return
	}

	sess := s.session(w, r)
	if err := s.submit(r.Context(), sess, form); errors.Is(err, storefront.ErrRequestInFlight) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, storefront.Render(sess.TakeView()))
}

// submit runs the click flow. Alerts land in the session, so only the
// in-flight rejection is reported to the caller.
func (s *Server) submit(ctx context.Context, sess *storefront.Session, form PersonalizeForm) error {
	err := sess.Submit(ctx, form.StyleProfile, form.Wardrobe)
	if err != nil {
		s.logger.Info("personalize request did not complete", map[string]interface{}{
			"userId": sess.UserID(),
			"error":  err.Error(),
		})
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.CheckTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
