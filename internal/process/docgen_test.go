package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDocumentRoundTrip(t *testing.T) {
	store := testStore(t)
	proc := sampleProcess()
	subs := []Subprocess{
		{
			StepName: "Collect Details",
			SubprocessSteps: []Substep{
				{SubstepName: "Request documents", Lane: "Sales"},
				{SubstepName: "Documents complete?", Type: "gateway", Lane: "Sales"},
			},
		},
	}

	path, err := store.WriteDocument(proc, subs)
	require.NoError(t, err)
	assert.Contains(t, path, "Customer_Onboarding_specification.docx")

	text, err := ExtractDocumentText(path)
	require.NoError(t, err)

	assert.Contains(t, text, "Customer Onboarding")
	assert.Contains(t, text, "Document Control")
	assert.Contains(t, text, "Process Overview")
	assert.Contains(t, text, "1. Collect Details")
	assert.Contains(t, text, "Responsible: Sales")
	assert.Contains(t, text, "Output: customer record")
	assert.Contains(t, text, "[decision] Documents complete?")
	// Control table content survives the round trip.
	assert.Contains(t, text, DocumentVersion)
}

func TestExtractDocumentTextMissingFile(t *testing.T) {
	_, err := ExtractDocumentText("/nonexistent/spec.docx")
	assert.Error(t, err)
}

func TestDocumentFileNameSlug(t *testing.T) {
	assert.Equal(t, "Invoice_Approval_specification.docx", documentFileName("Invoice Approval"))
	assert.Equal(t, "process_specification.docx", documentFileName("///"))
}
