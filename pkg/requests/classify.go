// Package requests implements C7: the permission-request state machine.
// Classification and the decision each transition produces are pure
// functions of a catalogue snapshot — they never touch the task store or
// the orchestrator directly. The Engine in engine.go is the thin shell
// that reads the snapshot, calls these functions, and persists the result
// through separate store writes (not one transaction).
package requests

import (
	"context"

	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
)

// Snapshot is the slice of catalogue state Classify needs, read once by the
// caller so classification stays a pure function of its inputs.
type Snapshot struct {
	// ActiveRequest is the most recent non-terminal request for the triple,
	// if any.
	ActiveRequest *models.PermissionRequest
	// LatestRequest is the most recent request for the triple regardless of
	// status, used for retry detection.
	LatestRequest *models.PermissionRequest
	// ChangeRequest is an approved or pending request for (requester,
	// folder) with a different mode, if any.
	ChangeRequest *models.PermissionRequest
	// AlreadyMember reports whether the requester already holds the mode
	// via an active group membership, per the catalogue snapshot.
	AlreadyMember bool
	// MemberWithDifferentMode reports whether the requester holds the
	// folder via a group with a different mode than requested.
	MemberWithDifferentMode bool
	// OldPermission is the FolderGroupPermission backing
	// MemberWithDifferentMode, if any — the (group, mode) a change approval
	// must remove before granting the newly requested mode.
	OldPermission *models.FolderGroupPermission
}

// LoadSnapshot reads the catalogue state Classify needs for the given
// triple. It is the only place classification touches the store.
func LoadSnapshot(ctx context.Context, s store.Store, t models.Triple) (Snapshot, error) {
	var snap Snapshot

	if r, err := s.FindActiveByTriple(ctx, t); err == nil {
		snap.ActiveRequest = r
	} else if err != models.ErrRequestNotFound {
		return snap, err
	}

	if r, err := s.FindLatestByTriple(ctx, t); err == nil {
		snap.LatestRequest = r
	} else if err != models.ErrRequestNotFound {
		return snap, err
	}

	perms, err := s.ListPermissionsByFolder(ctx, t.FolderID)
	if err != nil {
		return snap, err
	}
	memberships, err := s.ListMembershipsByUser(ctx, t.RequesterID)
	if err != nil {
		return snap, err
	}
	memberGroups := make(map[string]bool, len(memberships))
	for _, m := range memberships {
		if m.Active {
			memberGroups[m.GroupID] = true
		}
	}
	for _, p := range perms {
		if !p.Active || !memberGroups[p.GroupID] {
			continue
		}
		if p.Mode == t.Mode {
			snap.AlreadyMember = true
		} else {
			snap.MemberWithDifferentMode = true
			snap.OldPermission = p
		}
	}

	// A different-mode pending/approved request for the same (requester,
	// folder) also counts as a change trigger, independent of membership.
	for _, status := range []models.RequestStatus{models.RequestPending, models.RequestApproved} {
		reqs, err := s.ListRequestsByStatus(ctx, status)
		if err != nil {
			return snap, err
		}
		for _, r := range reqs {
			if r.RequesterID == t.RequesterID && r.FolderID == t.FolderID && r.Mode != t.Mode {
				snap.ChangeRequest = r
				break
			}
		}
	}

	return snap, nil
}

// Classify implements §4.7's classification rules as a pure function of a
// pre-loaded Snapshot.
func Classify(snap Snapshot) models.Classification {
	if snap.ActiveRequest != nil && snap.ActiveRequest.Status == models.RequestApproved {
		return models.ClassificationDuplicate
	}
	if snap.AlreadyMember {
		return models.ClassificationDuplicate
	}
	if snap.ChangeRequest != nil || snap.MemberWithDifferentMode {
		return models.ClassificationChange
	}
	if snap.LatestRequest != nil &&
		(snap.LatestRequest.Status == models.RequestFailed || snap.LatestRequest.Status == models.RequestRejected) {
		return models.ClassificationRetry
	}
	return models.ClassificationNew
}
