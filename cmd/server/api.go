package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/weddingquote/internal/adjustments"
	"github.com/Simplici0/weddingquote/internal/lead"
	"github.com/Simplici0/weddingquote/internal/pricing"
	"github.com/Simplici0/weddingquote/internal/quotedoc"
	"github.com/Simplici0/weddingquote/internal/validation"
)

type customQuoteRequest struct {
	Answers               pricing.Answers     `json:"answers"`
	AdditionalAdjustments []adjustments.Input `json:"additionalAdjustments"`
}

type leadRequest struct {
	Lead                  map[string]any      `json:"lead"`
	PackageID             string              `json:"packageId"`
	IsCustom              bool                `json:"isCustom"`
	Answers               pricing.Answers     `json:"answers"`
	AdditionalRequests    string              `json:"additionalRequests"`
	AdditionalAdjustments []adjustments.Input `json:"additionalAdjustments"`
	Locale                string              `json:"locale"`
	GDPRAccepted          bool                `json:"gdprAccepted"`
}

type leadResponse struct {
	LeadID      string `json:"leadId"`
	QuoteID     string `json:"quoteId"`
	DownloadURL string `json:"downloadUrl"`
	PrintURL    string `json:"printUrl"`
}

func (s *server) handlePublicConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.siteConfig(r.Context()))
}

func (s *server) handlePackageQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, ok := pricing.CalculateFixedPackage(s.siteConfig(r.Context()), id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: %q", quotedoc.ErrUnknownPackage, id))
		return
	}
	s.metrics.QuoteComputed(false)
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleCustomQuote(w http.ResponseWriter, r *http.Request) {
	var req customQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := pricing.CalculateCustom(s.siteConfig(r.Context()), req.Answers, pricing.Options{
		AdditionalAdjustments: req.AdditionalAdjustments,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.QuoteComputed(true)
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	payload, leadErr := lead.FinalizeWirePayload(lead.ToWirePayload(req.Lead))
	verr := &validation.Error{}
	if err := verr.Merge(leadErr); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.GDPRAccepted {
		verr.Add("gdprAccepted", "consent to the privacy policy is required")
	}
	if err := verr.OrNil(); err != nil {
		s.writeError(w, r, err)
		return
	}

	docReq := quotedoc.Request{
		PackageID:          strings.TrimSpace(req.PackageID),
		IsCustom:           req.IsCustom,
		Answers:            req.Answers,
		AdditionalRequests: req.AdditionalRequests,
		Adjustments:        req.AdditionalAdjustments,
		Lead:               payload,
		Locale:             req.Locale,
	}
	query, err := quotedoc.BuildSearchParams(docReq)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	decoded, err := quotedoc.ParseQuery(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := quotedoc.Price(s.siteConfig(r.Context()), decoded)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snapshot, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("marshal quote snapshot: %w", err))
		return
	}

	quoteID := quotedoc.SnapshotID(query)
	acceptedAt := s.now().UTC()
	rec, err := s.store.InsertLead(r.Context(), lead.ToStorageRecord(payload, lead.Meta{
		Locale:             req.Locale,
		PackageID:          decoded.PackageID,
		IsCustom:           decoded.IsCustom,
		QuoteID:            quoteID,
		QuoteSnapshot:      snapshot,
		AdditionalRequests: decoded.AdditionalRequests,
		GDPRAcceptedAt:     &acceptedAt,
	}))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.leads.Save(quoteID, payload); err != nil {
		s.logger.Warn("failed to cache lead", "quote_id", quoteID, "error", err)
	}
	s.metrics.LeadCreated()
	s.metrics.QuoteComputed(decoded.IsCustom)
	s.logger.Info("lead created", "lead_id", rec.ID, "quote_id", quoteID, "custom", decoded.IsCustom)

	downloadURL, err := quotedoc.ResolveAction(quotedoc.ActionDownload, docReq)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	printURL, err := quotedoc.ResolveAction(quotedoc.ActionPrint, docReq)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, leadResponse{
		LeadID:      rec.ID,
		QuoteID:     quoteID,
		DownloadURL: downloadURL,
		PrintURL:    printURL,
	})
}
