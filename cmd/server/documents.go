package main

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/Simplici0/weddingquote/internal/pricing"
	"github.com/Simplici0/weddingquote/internal/quotedoc"
	"github.com/Simplici0/weddingquote/internal/render"
	"github.com/Simplici0/weddingquote/internal/siteconfig"
)

type pricedQuery struct {
	config  *siteconfig.AppConfig
	decoded *quotedoc.Decoded
	result  *pricing.Result
	quoteID string
}

// priceQuery decodes the document query of r and prices it against one
// snapshot of the site config. The lead falls back to the one cached for
// the same quote.
func (s *server) priceQuery(r *http.Request) (*pricedQuery, error) {
	query := r.URL.Query()
	decoded, err := quotedoc.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	cfg := s.siteConfig(r.Context())
	result, err := quotedoc.Price(cfg, decoded)
	if err != nil {
		return nil, err
	}

	quoteID := quotedoc.SnapshotID(query)
	if decoded.Lead.IsZero() {
		if cached, ok := s.leads.Load(quoteID); ok {
			decoded.Lead = cached
		}
	}
	return &pricedQuery{config: cfg, decoded: decoded, result: result, quoteID: quoteID}, nil
}

func (s *server) handleQuotePrint(w http.ResponseWriter, r *http.Request) {
	pq, err := s.priceQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = render.WriteQuoteHTML(&buf, render.Document{
		Config:             pq.config,
		Result:             pq.result,
		Lead:               pq.decoded.Lead,
		Locale:             pq.decoded.Locale,
		QuoteID:            pq.quoteID,
		AdditionalRequests: pq.decoded.AdditionalRequests,
		IssuedAt:           s.now(),
	})
	if err != nil {
		s.writeError(w, r, fmt.Errorf("render print view: %w", err))
		return
	}

	s.metrics.DocumentRendered("html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	pq, err := s.priceQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	target := strings.TrimRight(s.baseURL, "/") + quotedoc.PrintPath + "?" + r.URL.RawQuery
	pdf, err := s.pdf.PrintURL(r.Context(), target)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("print quote %s: %w", pq.quoteID, err))
		return
	}

	s.metrics.DocumentRendered("pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="preventivo-%s.pdf"`, pq.quoteID))
	_, _ = w.Write(pdf)
}
