package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest_FreshValuePerCall(t *testing.T) {
	template := &ListWorkflowsRequest{Status: "RUNNING"}

	first := newRequest(template)
	second := newRequest(template)

	assert.NotSame(t, template, first)
	assert.NotSame(t, first, second)
	assert.Empty(t, first.Status)
}

func TestWorkflowsResponse_Len(t *testing.T) {
	assert.Equal(t, 2, WorkflowsResponse{Count: 2}.Len())
}

func TestRequestValidation(t *testing.T) {
	assert.NoError(t, (&ListWorkflowsRequest{}).Validate())
	assert.Error(t, (&ListWorkflowsRequest{Status: "FINISHED\n"}).Validate())

	assert.NoError(t, (&WorkflowsByPeriodRequest{Month: 12, Year: 2024}).Validate())
	assert.Error(t, (&WorkflowsByPeriodRequest{Month: 0, Year: 2024}).Validate())

	assert.NoError(t, (&UpdateWorkflowStatusRequest{ID: 1, Status: "DONE"}).Validate())
	assert.Error(t, (&UpdateWorkflowStatusRequest{ID: 0, Status: "DONE"}).Validate())
}
