package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/permflow/engine/pkg/catalogue/models"
)

// ============================================================================
// Classify tests
// ============================================================================

func TestClassify(t *testing.T) {
	t.Parallel()

	approved := &models.PermissionRequest{Status: models.RequestApproved}
	pending := &models.PermissionRequest{Status: models.RequestPending}
	failed := &models.PermissionRequest{Status: models.RequestFailed}
	rejected := &models.PermissionRequest{Status: models.RequestRejected}
	canceled := &models.PermissionRequest{Status: models.RequestCanceled}

	tests := []struct {
		name string
		snap Snapshot
		want models.Classification
	}{
		{
			name: "active approved request is a duplicate",
			snap: Snapshot{ActiveRequest: approved},
			want: models.ClassificationDuplicate,
		},
		{
			name: "already a member via matching mode is a duplicate",
			snap: Snapshot{AlreadyMember: true},
			want: models.ClassificationDuplicate,
		},
		{
			name: "active approved takes priority over change signals",
			snap: Snapshot{ActiveRequest: approved, MemberWithDifferentMode: true},
			want: models.ClassificationDuplicate,
		},
		{
			name: "pending change request for the triple is a change",
			snap: Snapshot{ChangeRequest: pending},
			want: models.ClassificationChange,
		},
		{
			name: "member with a different mode is a change",
			snap: Snapshot{MemberWithDifferentMode: true},
			want: models.ClassificationChange,
		},
		{
			name: "latest request failed is a retry",
			snap: Snapshot{LatestRequest: failed},
			want: models.ClassificationRetry,
		},
		{
			name: "latest request rejected is a retry",
			snap: Snapshot{LatestRequest: rejected},
			want: models.ClassificationRetry,
		},
		{
			name: "latest request canceled is not a retry",
			snap: Snapshot{LatestRequest: canceled},
			want: models.ClassificationNew,
		},
		{
			name: "no signals at all is new",
			snap: Snapshot{},
			want: models.ClassificationNew,
		},
		{
			name: "active pending request with no other signal is new",
			snap: Snapshot{ActiveRequest: pending},
			want: models.ClassificationNew,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.snap)
			assert.Equal(t, tt.want, got)
		})
	}
}
