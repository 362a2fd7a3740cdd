package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerificationStatusTransitions(t *testing.T) {
	require.True(t, StatusPending.CanTransition(StatusApproved))
	require.True(t, StatusPending.CanTransition(StatusRejected))

	require.False(t, StatusApproved.CanTransition(StatusRejected))
	require.False(t, StatusApproved.CanTransition(StatusPending))
	require.False(t, StatusRejected.CanTransition(StatusApproved))
	require.False(t, StatusRejected.CanTransition(StatusPending))
	require.False(t, StatusPending.CanTransition(StatusPending))
}

func TestVerificationStatusValid(t *testing.T) {
	require.True(t, StatusPending.Valid())
	require.True(t, StatusApproved.Valid())
	require.True(t, StatusRejected.Valid())
	require.False(t, VerificationStatus("Archived").Valid())
	require.False(t, VerificationStatus("pending").Valid())
	require.False(t, VerificationStatus("").Valid())
}

func TestDecisionStatus(t *testing.T) {
	status, ok := DecisionApprove.Status()
	require.True(t, ok)
	require.Equal(t, StatusApproved, status)

	status, ok = DecisionReject.Status()
	require.True(t, ok)
	require.Equal(t, StatusRejected, status)

	_, ok = Decision("defer").Status()
	require.False(t, ok)
}

func TestCategoryValid(t *testing.T) {
	for _, category := range Categories() {
		require.True(t, category.Valid())
	}
	require.False(t, Category("sports").Valid())
	require.False(t, Category("").Valid())
}

func TestRecordEditable(t *testing.T) {
	record := ActivityRecord{Status: StatusPending}
	require.True(t, record.Editable())
	require.False(t, record.Decided())

	record.Status = StatusRejected
	require.False(t, record.Editable())
	require.True(t, record.Decided())
}
