// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-offline-sync/internal/app"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// titleQueryParam carries the title prefix filter of a page request.
const titleQueryParam = "q"

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r, "*Handler.listRecords")
	if !ok {
		return
	}

	records, err := h.services.RecordService.ListRecords(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, r, "*Handler.listRecords", err, app.MsgInternalServerError)
		return
	}

	utils.WriteJSON(w, records, http.StatusOK)
}

// getPage answers a page request. A request whose If-Modified-Since header
// equals the owner's watermark gets 304 and no body.
func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r, "*Handler.getPage")
	if !ok {
		return
	}

	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		logger.FromRequest(r).Warn().Str("func", "*Handler.getPage").Str("page", chi.URLParam(r, "page")).Msg("invalid page")
		http.Error(w, app.MsgInvalidPage, http.StatusBadRequest)
		return
	}

	req := models.PageRequest{
		Page:   page,
		Filter: r.URL.Query().Get(titleQueryParam),
	}
	if watermark, ok := utils.ParseWatermark(r); ok {
		req.Watermark = &watermark
	}

	result, err := h.services.RecordService.GetPage(r.Context(), ownerID, req)
	if errors.Is(err, service.ErrNotModified) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if err != nil {
		h.writeError(w, r, "*Handler.getPage", err, app.MsgInternalServerError)
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r, "*Handler.createRecord")
	if !ok {
		return
	}

	record, ok := decodeRecord(w, r, "*Handler.createRecord")
	if !ok {
		return
	}

	created, err := h.services.RecordService.CreateRecord(r.Context(), ownerID, record)
	if err != nil {
		h.writeError(w, r, "*Handler.createRecord", err, app.MsgInternalServerError)
		return
	}

	utils.WriteJSON(w, created, http.StatusCreated)
}

// updateRecord answers 409 with the stored record when the update is not
// strictly newer.
func (h *Handler) updateRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r, "*Handler.updateRecord")
	if !ok {
		return
	}

	record, ok := decodeRecord(w, r, "*Handler.updateRecord")
	if !ok {
		return
	}

	updated, err := h.services.RecordService.UpdateRecord(r.Context(), ownerID, chi.URLParam(r, "id"), record)
	if err != nil {
		var stale *store.StaleRecordError
		if errors.As(err, &stale) {
			logger.FromRequest(r).Info().
				Str("func", "*Handler.updateRecord").
				Str("record_id", record.ID).
				Int64("last_edit", record.LastEdit).
				Int64("stored_last_edit", stale.Current.LastEdit).
				Msg("stale update rejected")
			utils.WriteJSON(w, stale.Current, http.StatusConflict)
			return
		}
		h.writeError(w, r, "*Handler.updateRecord", err, app.MsgInternalServerError)
		return
	}

	utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(w, r, "*Handler.deleteRecord")
	if !ok {
		return
	}

	if err := h.services.RecordService.DeleteRecord(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, "*Handler.deleteRecord", err, app.MsgInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ownerID(w http.ResponseWriter, r *http.Request, funcName string) (int64, bool) {
	ownerID, found := utils.GetUserIDFromContext(r.Context())
	if !found {
		logger.FromRequest(r).Error().Str("func", funcName).Msg("no user ID was given")
		http.Error(w, app.MsgNoUserIDProvided, http.StatusUnauthorized)
		return 0, false
	}
	return ownerID, true
}

func decodeRecord(w http.ResponseWriter, r *http.Request, funcName string) (models.Record, bool) {
	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		logger.FromRequest(r).Err(err).Str("func", funcName).Msg("Invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return models.Record{}, false
	}
	return record, true
}
