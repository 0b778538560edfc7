package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBulkDeleteReportFinalize(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *BulkDeleteReport)
		wantStatus BulkStatus
		wantHTTP   int
	}{
		{
			name: "all deleted",
			mutate: func(r *BulkDeleteReport) {
				r.DeletedProfiles = []int64{1, 2}
				r.DeletedIdentities = []int64{100, 200}
			},
			wantStatus: BulkStatusSuccess,
			wantHTTP:   200,
		},
		{
			name: "profile deletion failed",
			mutate: func(r *BulkDeleteReport) {
				r.DeletedProfiles = []int64{1}
				r.FailedProfileDeletions = []FailedDeletion{{ID: 2, Reason: "fk violation"}}
			},
			wantStatus: BulkStatusPartial,
			wantHTTP:   207,
		},
		{
			name: "identity orphaned",
			mutate: func(r *BulkDeleteReport) {
				r.DeletedProfiles = []int64{1}
				r.FailedIdentityDeletions = []FailedDeletion{{ID: 1, Reason: "service down"}}
			},
			wantStatus: BulkStatusPartial,
			wantHTTP:   207,
		},
		{
			name:       "nothing deleted",
			mutate:     func(r *BulkDeleteReport) {},
			wantStatus: BulkStatusFailure,
			wantHTTP:   500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewBulkDeleteReport()
			tt.mutate(report)
			report.Finalize()
			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.wantHTTP, report.HTTPStatus())
		})
	}
}

func TestNewBulkDeleteReportInitializesLists(t *testing.T) {
	report := NewBulkDeleteReport()
	assert.NotNil(t, report.DeletedProfiles)
	assert.NotNil(t, report.FailedProfileDeletions)
	assert.NotNil(t, report.DeletedIdentities)
	assert.NotNil(t, report.FailedIdentityDeletions)
}
