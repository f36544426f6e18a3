package process

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/pkg/errors"
	"atlas/pkg/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	require.NoError(t, logger.Init("error", "test"))
	return NewStore(t.TempDir(), logger.Get())
}

func sampleProcess() Process {
	return Process{
		ProcessName: "Customer Onboarding",
		Description: "How a new customer account is provisioned.",
		Actors:      []string{"Sales", "Operations"},
		ProcessSteps: []Step{
			{
				StepName:    "Collect Details",
				Description: "Gather customer and contract data.",
				Actor:       "Sales",
				Outputs:     []string{"customer record"},
				NextSteps:   []string{"Provision Account"},
			},
			{
				StepName:    "Provision Account",
				Description: "Create the account in the billing system.",
				Actor:       "Operations",
				Inputs:      []string{"customer record"},
			},
		},
	}
}

func TestStoreSaveAndLoadProcess(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.SaveProcess(sampleProcess()))

	loaded, err := store.LoadProcess()
	require.NoError(t, err)
	assert.Equal(t, "Customer Onboarding", loaded.ProcessName)
	require.Len(t, loaded.ProcessSteps, 2)
	assert.Equal(t, "Operations", loaded.ProcessSteps[1].Actor)
}

func TestStoreLoadProcessMissing(t *testing.T) {
	store := testStore(t)

	_, err := store.LoadProcess()
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestStoreSaveProcessJSONRejectsSchemaViolations(t *testing.T) {
	store := testStore(t)

	err := store.SaveProcessJSON(`{"process_name": "X"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSchemaViolation))

	// Nothing should have been written for the invalid payload.
	_, statErr := os.Stat(store.ProcessPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestStoreApprovalLifecycle(t *testing.T) {
	store := testStore(t)

	// Missing file reads as an empty verdict.
	approval, err := store.LoadApproval()
	require.NoError(t, err)
	assert.Equal(t, Approval{}, approval)

	merged, err := store.RecordApproval(Approval{ComplianceStatus: StatusApproved})
	require.NoError(t, err)
	assert.False(t, merged.Ready(false))

	merged, err = store.RecordApproval(Approval{SimulationStatus: StatusApproved})
	require.NoError(t, err)
	assert.True(t, merged.Ready(false))
	assert.Equal(t, StatusApproved, merged.ComplianceStatus)

	require.NoError(t, store.ResetApproval())
	approval, err = store.LoadApproval()
	require.NoError(t, err)
	assert.Equal(t, Approval{}, approval)

	// Resetting twice is harmless.
	require.NoError(t, store.ResetApproval())
}

func TestStoreSubprocessPathSlug(t *testing.T) {
	store := testStore(t)

	path := store.SubprocessPath("Review & Sign-off (Legal)")
	assert.Contains(t, path, "Review_Sign-off_Legal")
	assert.Contains(t, path, "subprocesses")
}

func TestValidateProcessJSONReportsAllViolations(t *testing.T) {
	err := ValidateProcessJSON(`{"process_name": "", "process_steps": [{"step_name": "A"}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
	assert.Contains(t, err.Error(), "actor")
}
