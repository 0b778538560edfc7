// Package services contains the business logic between the HTTP controllers
// and the repositories. The student and teacher services implement the
// provisioning flow that keeps the local records and the external identity
// service consistent without a shared transaction: the identity is created
// first, the local transaction runs second, and a failed local transaction
// triggers a best-effort compensating deletion of the identity.
package services

import (
	"context"

	"github.com/mertz/schooladmin/internal/pkg/apperrors"
	"github.com/mertz/schooladmin/internal/pkg/identity"
	"github.com/mertz/schooladmin/internal/pkg/logger"
)

// compensateProvisioning undoes an already-provisioned identity after the
// local transaction failed. The deletion is attempted once; its outcome is
// attached to the returned error as metadata and never replaces the primary
// failure. A failed compensation leaves an orphaned identity behind, which
// the error metadata surfaces for manual reconciliation.
func compensateProvisioning(ctx context.Context, provisioner identity.Provisioner, identityID int64, cause error, message string) error {
	outcome := apperrors.CompensationSucceeded
	if err := provisioner.DeleteUser(ctx, identityID); err != nil {
		outcome = apperrors.CompensationFailed
		logger.Error().Err(err).Int64("identityId", identityID).Msg("Compensating identity deletion failed, identity orphaned")
	} else {
		logger.Info().Int64("identityId", identityID).Msg("Compensating identity deletion succeeded")
	}
	return apperrors.NewSagaError(cause, message, outcome, identityID)
}
