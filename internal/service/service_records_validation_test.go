package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-offline-sync/internal/mock"
	"github.com/MKhiriev/go-offline-sync/internal/validators"
	"github.com/MKhiriev/go-offline-sync/models"
)

func newValidatedRecordService(t *testing.T) (RecordService, *mock.MockRecordService) {
	t.Helper()
	inner := mock.NewMockRecordService(gomock.NewController(t))
	return NewRecordValidationService().Wrap(inner), inner
}

func TestRecordValidationService_CreateRecord(t *testing.T) {
	svc, inner := newValidatedRecordService(t)
	ctx := context.Background()

	valid := movie("", "Heat", 0)
	inner.EXPECT().CreateRecord(ctx, int64(1), valid).Return(valid, nil)

	_, err := svc.CreateRecord(ctx, 1, valid)
	require.NoError(t, err)

	invalid := movie("", "", 0)
	_, err = svc.CreateRecord(ctx, 1, invalid)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.ErrorIs(t, err, validators.ErrInvalidRecord)
}

func TestRecordValidationService_UpdateRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  models.Record
		wantErr error
	}{
		{name: "temporary id", record: movie("local-1", "Heat", 5), wantErr: validators.ErrTemporaryID},
		{name: "missing id", record: movie("", "Heat", 5), wantErr: validators.ErrEmptyRecordID},
		{name: "missing timestamp", record: movie("abc", "Heat", 0), wantErr: validators.ErrInvalidLastEdit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newValidatedRecordService(t)

			_, err := svc.UpdateRecord(context.Background(), 1, tt.record.ID, tt.record)
			assert.ErrorIs(t, err, ErrInvalidDataProvided)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("valid passes through", func(t *testing.T) {
		svc, inner := newValidatedRecordService(t)
		rec := movie("abc", "Heat", 5)
		inner.EXPECT().UpdateRecord(gomock.Any(), int64(1), "abc", rec).Return(rec, nil)

		_, err := svc.UpdateRecord(context.Background(), 1, "abc", rec)
		assert.NoError(t, err)
	})
}

func TestRecordValidationService_DeleteAndPage(t *testing.T) {
	svc, inner := newValidatedRecordService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteRecord(ctx, 1, ""), ErrInvalidDataProvided)
	assert.ErrorIs(t, svc.DeleteRecord(ctx, 1, "local-9"), ErrInvalidDataProvided)

	inner.EXPECT().DeleteRecord(ctx, int64(1), "abc").Return(nil)
	assert.NoError(t, svc.DeleteRecord(ctx, 1, "abc"))

	_, err := svc.GetPage(ctx, 1, models.PageRequest{Page: -1})
	assert.ErrorIs(t, err, ErrInvalidPage)

	inner.EXPECT().GetPage(ctx, int64(1), models.PageRequest{Page: 1}).Return(models.Page{Watermark: 3}, nil)
	page, err := svc.GetPage(ctx, 1, models.PageRequest{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Watermark)
}
