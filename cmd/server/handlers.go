package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/bilan"
	"github.com/Simplici0/marges/internal/catalog"
	"github.com/Simplici0/marges/internal/ledger"
	"github.com/Simplici0/marges/internal/pricing"
	"github.com/Simplici0/marges/internal/recipe"
	"github.com/Simplici0/marges/internal/report"
	"github.com/Simplici0/marges/internal/session"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("corps de requête vide")

type categoryView struct {
	catalog.Category
	SalePrice decimal.Decimal `json:"sale_price"`
}

type editRequest struct {
	Rows []recipe.Row `json:"rows"`
}

type forecastRequest struct {
	Target string `json:"target"`
}

type saveResponse struct {
	Category string `json:"category"`
	Rows     int    `json:"rows"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.app.Catalog.Categories
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{Category: c, SalePrice: s.app.Catalog.SalePrices[c.Tier]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.app.Ledger.Entries(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleRecipeShow loads a category and makes it the session's displayed
// recipe, discarding any unsaved edits.
func (s *server) handleRecipeShow(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	rec, err := s.app.LoadRecipe(r.Context(), category)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.display(w, r, category, rec)
}

// handleRecipeEdit replaces the displayed rows with the client's edited grid.
func (s *server) handleRecipeEdit(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if _, err := s.app.Catalog.Category(category); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	var req editRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	for i, row := range req.Rows {
		if row.Name == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("ligne %d: matière manquante", i+1)})
			return
		}
	}

	s.display(w, r, category, recipe.Recipe{Category: category, Rows: req.Rows})
}

// handleRecipeSave persists the displayed recipe and merges its prices into
// the ledger.
func (s *server) handleRecipeSave(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	rec, ok := s.displayed(w, r, category)
	if !ok {
		return
	}
	if err := s.app.SaveRecipe(r.Context(), category, rec); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Category: category, Rows: len(rec.Rows)})
}

// handleRecipeForecast scales the displayed quantities to a production
// target. Invalid targets leave the session untouched.
func (s *server) handleRecipeForecast(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var req forecastRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rec, ok := s.displayed(w, r, category)
	if !ok {
		return
	}
	scaled, err := s.app.Forecast(rec, req.Target)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.display(w, r, category, scaled)
}

func (s *server) handleRecipeExport(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	rec, err := s.currentOrLoaded(r, category)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	name, data, err := s.app.ExportSpreadsheet(category, rec)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeAttachment(w, report.MediaTypeSpreadsheet, name, data)
}

func (s *server) handleBilan(w http.ResponseWriter, r *http.Request) {
	in, ok := s.bilanInput(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bilan.Compute(in))
}

func (s *server) handleBilanPDF(w http.ResponseWriter, r *http.Request) {
	in, ok := s.bilanInput(w, r)
	if !ok {
		return
	}
	data, err := report.Document(bilan.Compute(in))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeAttachment(w, report.MediaTypePDF, report.DocumentFileName, data)
}

// bilanInput decodes the request body, or falls back to the catalog's sample
// balance when the body is empty.
func (s *server) bilanInput(w http.ResponseWriter, r *http.Request) (bilan.Input, bool) {
	var in bilan.Input
	err := decodeJSON(r, &in)
	if errors.Is(err, errEmptyBody) {
		return s.app.Catalog.Bilan, true
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return bilan.Input{}, false
	}
	return in, true
}

// display stores rec as the session's displayed recipe and answers with its
// table.
func (s *server) display(w http.ResponseWriter, r *http.Request, category string, rec recipe.Recipe) {
	table, err := s.app.Table(category, rec)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	sess := session.Session{ID: sessionID(r), Category: category, Recipe: rec}
	if err := s.app.Sessions.Put(r.Context(), sess); err != nil {
		s.writeFailure(w, r, fmt.Errorf("store session: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// displayed returns the session's recipe for category. It answers 409 when
// another category, or nothing, is displayed.
func (s *server) displayed(w http.ResponseWriter, r *http.Request, category string) (recipe.Recipe, bool) {
	if _, err := s.app.Catalog.Category(category); err != nil {
		s.writeFailure(w, r, err)
		return recipe.Recipe{}, false
	}

	sess, err := s.app.Sessions.Get(r.Context(), sessionID(r))
	if errors.Is(err, session.ErrNotFound) || (err == nil && sess.Category != category) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "recette non affichée, chargez la catégorie d'abord"})
		return recipe.Recipe{}, false
	}
	if err != nil {
		s.writeFailure(w, r, fmt.Errorf("load session: %w", err))
		return recipe.Recipe{}, false
	}
	return sess.Recipe, true
}

// currentOrLoaded prefers the displayed recipe and falls back to the stored
// one.
func (s *server) currentOrLoaded(r *http.Request, category string) (recipe.Recipe, error) {
	sess, err := s.app.Sessions.Get(r.Context(), sessionID(r))
	if err == nil && sess.Category == category {
		return sess.Recipe, nil
	}
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return recipe.Recipe{}, fmt.Errorf("load session: %w", err)
	}
	return s.app.LoadRecipe(r.Context(), category)
}

func (s *server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownCategory):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, pricing.ErrInvalidForecastTarget):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "erreur interne"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("corps de requête invalide: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAttachment(w http.ResponseWriter, mediaType, name string, data []byte) {
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
