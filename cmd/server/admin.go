package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/weddingquote/internal/gallery"
	"github.com/Simplici0/weddingquote/internal/siteconfig"
	"github.com/Simplici0/weddingquote/internal/store"
	"github.com/Simplici0/weddingquote/internal/validation"
)

const (
	maxConfigBody = 4 << 20
	maxUploadSize = 20 << 20
)

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if _, err := s.auth.verifySessionValue(cookie.Value); err == nil {
			http.Redirect(w, r, "/admin/leads", http.StatusSeeOther)
			return
		}
	}
	s.renderTemplate(w, http.StatusOK, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	user, err := s.store.Authenticate(r.Context(), email, password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		s.logger.Warn("failed admin login", "email", email)
		s.renderTemplate(w, http.StatusUnauthorized, "login.html", loginViewData{
			baseViewData: baseViewData{ErrorMessage: "Credenziali non valide. Riprova."},
			Email:        email,
		})
		return
	}
	if err != nil {
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}

	if err := s.auth.setSessionCookie(w, user.ID, user.Email); err != nil {
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	s.logger.Info("admin logged in", "email", user.Email)
	http.Redirect(w, r, "/admin/leads", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) handleAdminConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.editableSiteConfig(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleAdminConfigUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxConfigBody))
	if err != nil {
		s.writeError(w, r, &validation.ParseError{What: "site config", Err: err})
		return
	}

	cfg, err := siteconfig.Parse(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SaveSiteConfig(r.Context(), cfg); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("site config updated", "admin", adminEmail(r.Context()), "packages", len(cfg.Packages))
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleAdminLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	result, err := s.store.ListLeads(r.Context(), store.LeadFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleAdminLead(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) handleAdminLeadDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteLead(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("lead deleted", "lead_id", id, "admin", adminEmail(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAdminGalleryUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, r, &validation.ParseError{What: "upload", Err: err})
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, &validation.ParseError{What: "image", Err: err})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, &validation.ParseError{What: "image", Err: err})
		return
	}

	cfg, err := s.editableSiteConfig(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	img, err := s.gallery.Save(data, siteconfig.LocalizedText{
		IT: strings.TrimSpace(r.FormValue("alt_it")),
		EN: strings.TrimSpace(r.FormValue("alt_en")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	gallery.Append(cfg, img)
	if err := s.store.SaveSiteConfig(r.Context(), cfg); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("gallery image added", "image_id", img.ID, "admin", adminEmail(r.Context()))
	writeJSON(w, http.StatusCreated, cfg.Site.Gallery[len(cfg.Site.Gallery)-1])
}
