// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

type recordService struct {
	recordRepository store.RecordRepository
	hub              PushHub
	ids              *utils.UUIDGenerator

	pageSize int
	now      func() int64

	logger *logger.Logger
}

// NewRecordService constructs the server-side [RecordService]. Successful
// creates and updates are published to hub.
func NewRecordService(recordRepository store.RecordRepository, hub PushHub, pageSize int, logger *logger.Logger) RecordService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	return &recordService{
		recordRepository: recordRepository,
		hub:              hub,
		ids:              utils.NewUUIDGenerator(),
		pageSize:         pageSize,
		now:              models.NowMillis,
		logger:           logger,
	}
}

func (s *recordService) ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error) {
	return s.recordRepository.ListRecords(ctx, ownerID)
}

// GetPage reads the watermark before the page so a write racing the read can
// only make the returned watermark older than the data, never newer.
func (s *recordService) GetPage(ctx context.Context, ownerID int64, req models.PageRequest) (models.Page, error) {
	if req.Page < 1 {
		return models.Page{}, ErrInvalidPage
	}

	watermark, err := s.recordRepository.GetWatermark(ctx, ownerID)
	if err != nil {
		return models.Page{}, err
	}

	if req.Watermark != nil && *req.Watermark == watermark {
		return models.Page{Watermark: watermark}, ErrNotModified
	}

	items, err := s.recordRepository.GetPage(ctx, ownerID, req.Page, s.pageSize, req.Filter)
	if err != nil {
		return models.Page{}, err
	}

	return models.Page{Items: items, Watermark: watermark}, nil
}

func (s *recordService) CreateRecord(ctx context.Context, ownerID int64, record models.Record) (models.Record, error) {
	record = record.Submission()
	record.ID = s.ids.Generate()
	record.OwnerID = ownerID
	if record.LastEdit == 0 {
		record.LastEdit = s.now()
	}

	created, _, err := s.recordRepository.CreateRecord(ctx, record)
	if err != nil {
		return models.Record{}, err
	}

	s.hub.Publish(ownerID, models.PushEvent{Type: models.EventCreated, Payload: created})
	return created, nil
}

func (s *recordService) UpdateRecord(ctx context.Context, ownerID int64, id string, record models.Record) (models.Record, error) {
	if record.ID != id {
		return models.Record{}, fmt.Errorf("%w: path %q, body %q", ErrRecordIDMismatch, id, record.ID)
	}

	record = record.Submission()
	record.OwnerID = ownerID

	updated, _, err := s.recordRepository.UpdateRecord(ctx, record)
	if err != nil {
		return models.Record{}, err
	}

	s.hub.Publish(ownerID, models.PushEvent{Type: models.EventUpdated, Payload: updated})
	return updated, nil
}

func (s *recordService) DeleteRecord(ctx context.Context, ownerID int64, id string) error {
	_, err := s.recordRepository.DeleteRecord(ctx, ownerID, id)
	return err
}
