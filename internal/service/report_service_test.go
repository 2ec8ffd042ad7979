package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolveit/complaints-api/internal/models"
)

type reportComplaintsStub struct {
	complaints []models.Complaint
	lastFilter models.ComplaintFilter
}

func (s *reportComplaintsStub) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	s.lastFilter = filter
	return s.complaints, nil
}

func TestReportServiceExportCSVRendersComplaintRows(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &reportComplaintsStub{complaints: []models.Complaint{
		{
			ID:          "c-1",
			Category:    models.CategoryBilling,
			Urgency:     models.UrgencyHigh,
			Status:      models.StatusAssigned,
			IsEscalated: true,
			Deadline:    &deadline,
			Version:     3,
			CreatedAt:   time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			ID:        "c-2",
			Category:  models.CategoryOther,
			Urgency:   models.UrgencyLow,
			Status:    models.StatusNew,
			Version:   1,
			CreatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewReportService(nil, store, nil, time.Minute, nil, nil)

	escalated := true
	payload, err := svc.ExportCSV(context.Background(), models.ComplaintFilter{Escalated: &escalated})
	require.NoError(t, err)
	require.NotNil(t, store.lastFilter.Escalated)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ID", "Category", "Urgency", "Status", "Escalated", "Submitted", "Deadline", "Version"}, records[0])
	assert.Equal(t, []string{"c-1", "BILLING", "HIGH", "ASSIGNED", "true", "2026-03-01 12:30", "2026-03-10 09:00", "3"}, records[1])
	assert.Equal(t, "c-2", records[2][0])
	assert.Equal(t, "", records[2][6], "missing deadline renders as an empty cell")
}

func TestReportServiceExportPDFRendersDocument(t *testing.T) {
	store := &reportComplaintsStub{complaints: []models.Complaint{
		{
			ID:        "c-1",
			Category:  models.CategoryTechnical,
			Urgency:   models.UrgencyMedium,
			Status:    models.StatusUnderReview,
			Version:   1,
			CreatedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewReportService(nil, store, nil, time.Minute, nil, nil)

	payload, err := svc.ExportPDF(context.Background(), models.ComplaintFilter{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
