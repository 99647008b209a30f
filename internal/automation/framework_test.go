package automation

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/oracle-automation/internal/database"
)

type fakeLister struct {
	gotStatus string
	rows      []database.Row
	err       error
}

func (f *fakeLister) ByStatus(_ context.Context, status string) ([]database.Row, error) {
	f.gotStatus = status
	return f.rows, f.err
}

func TestNew_DefaultStatus(t *testing.T) {
	f := New("", &fakeLister{}, nil)

	assert.Equal(t, "FINISHED", f.Status)
	assert.NotNil(t, f.Out)
}

func TestFramework_Run(t *testing.T) {
	lister := &fakeLister{rows: []database.Row{{"id": int64(1), "status": "RUNNING"}}}
	var out bytes.Buffer

	f := New("RUNNING", lister, nil)
	f.Out = &out

	rows, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "RUNNING", lister.gotStatus)
	assert.Len(t, rows, 1)
	assert.Contains(t, out.String(), `"status": "RUNNING"`)
}

func TestFramework_RunPropagatesError(t *testing.T) {
	boom := errors.New("ORA-12541: TNS:no listener")
	var out bytes.Buffer

	f := New("FINISHED", &fakeLister{err: boom}, nil)
	f.Out = &out

	_, err := f.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out.String())
}
