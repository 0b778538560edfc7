package dto

// BulkDeleteRequest carries the ids to delete. Every id must resolve within
// the caller's school or the whole request is rejected before any deletion.
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids" binding:"required" validate:"required,min=1,dive,gt=0"`
}

// BulkStatus is the aggregate outcome tier of a bulk deletion
type BulkStatus string

const (
	// BulkStatusSuccess means every profile and every identity was deleted
	BulkStatusSuccess BulkStatus = "success"
	// BulkStatusPartial means some profile or identity deletions failed
	BulkStatusPartial BulkStatus = "partial"
	// BulkStatusFailure means no profile was deleted at all
	BulkStatusFailure BulkStatus = "failure"
)

// FailedDeletion records one failed item with its reason
type FailedDeletion struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BulkDeleteReport aggregates per-item outcomes of a bulk deletion. Local
// profile deletions and remote identity deletions are bookkept independently:
// an orphaned remote identity shows up in FailedIdentityDeletions and is the
// operator's cue to reconcile manually.
type BulkDeleteReport struct {
	Status                  BulkStatus       `json:"status"`
	DeletedProfiles         []int64          `json:"deletedProfiles"`
	FailedProfileDeletions  []FailedDeletion `json:"failedProfileDeletions"`
	DeletedIdentities       []int64          `json:"deletedIdentities"`
	FailedIdentityDeletions []FailedDeletion `json:"failedIdentityDeletions"`
}

// NewBulkDeleteReport creates an empty report with initialized lists so the
// JSON payload always contains all four arrays.
func NewBulkDeleteReport() *BulkDeleteReport {
	return &BulkDeleteReport{
		DeletedProfiles:         make([]int64, 0),
		FailedProfileDeletions:  make([]FailedDeletion, 0),
		DeletedIdentities:       make([]int64, 0),
		FailedIdentityDeletions: make([]FailedDeletion, 0),
	}
}

// Finalize computes the aggregate status from the per-item lists
func (r *BulkDeleteReport) Finalize() {
	switch {
	case len(r.DeletedProfiles) == 0:
		r.Status = BulkStatusFailure
	case len(r.FailedProfileDeletions) == 0 && len(r.FailedIdentityDeletions) == 0:
		r.Status = BulkStatusSuccess
	default:
		r.Status = BulkStatusPartial
	}
}

// HTTPStatus maps the aggregate status to the response tier:
// 200 full success, 207 partial, 500 total failure.
func (r *BulkDeleteReport) HTTPStatus() int {
	switch r.Status {
	case BulkStatusSuccess:
		return 200
	case BulkStatusPartial:
		return 207
	default:
		return 500
	}
}
