package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/validators"
	"github.com/MKhiriev/go-offline-sync/models"
)

type RecordValidationService struct {
	inner     RecordService
	validator validators.Validator
}

func NewRecordValidationService() RecordServiceWrapper {
	return &RecordValidationService{
		validator: validators.NewRecordValidator(),
	}
}

func (v *RecordValidationService) ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error) {
	return v.inner.ListRecords(ctx, ownerID)
}

func (v *RecordValidationService) GetPage(ctx context.Context, ownerID int64, req models.PageRequest) (models.Page, error) {
	if req.Page < 1 {
		return models.Page{}, ErrInvalidPage
	}
	return v.inner.GetPage(ctx, ownerID, req)
}

func (v *RecordValidationService) CreateRecord(ctx context.Context, ownerID int64, record models.Record) (models.Record, error) {
	if err := v.validator.Validate(ctx, record); err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.CreateRecord(ctx, ownerID, record)
}

func (v *RecordValidationService) UpdateRecord(ctx context.Context, ownerID int64, id string, record models.Record) (models.Record, error) {
	if err := v.validator.Validate(ctx, record, validators.FieldID, validators.FieldLastEdit); err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.UpdateRecord(ctx, ownerID, id, record)
}

func (v *RecordValidationService) DeleteRecord(ctx context.Context, ownerID int64, id string) error {
	if id == "" || models.IsTemporaryID(id) {
		return fmt.Errorf("%w: invalid record id %q", ErrInvalidDataProvided, id)
	}
	return v.inner.DeleteRecord(ctx, ownerID, id)
}

func (v *RecordValidationService) Wrap(wrapped RecordService) RecordService {
	v.inner = wrapped
	return v
}
