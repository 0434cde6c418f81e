// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2md/pkg/types"
)

func openTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "runs.db")
	l, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestRecordAndRuns(t *testing.T) {
	l, _ := openTestLedger(t)
	start := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)

	ok := types.RunRecord{
		Input:      "/tmp/a.pdf",
		Output:     "/out/a",
		Backend:    "tabula",
		Pages:      3,
		Images:     2,
		Status:     types.ConversionDone,
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	}
	failed := types.RunRecord{
		Input:      "/tmp/b.pdf",
		Status:     types.ConversionFailed,
		Error:      "opening PDF /tmp/b.pdf: no such file or directory",
		StartedAt:  start,
		FinishedAt: start,
	}
	require.NoError(t, l.Record(ok))
	require.NoError(t, l.Record(failed))
	require.NoError(t, l.Record(ok))

	all, err := l.Runs("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, failed, all[1])

	onlyA, err := l.Runs("/tmp/a.pdf")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, ok, onlyA[0])
	assert.Equal(t, ok, onlyA[1])

	none, err := l.Runs("/tmp/missing.pdf")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpen_Reopen(t *testing.T) {
	l, path := openTestLedger(t)
	require.NoError(t, l.Record(types.RunRecord{Input: "x.pdf", Status: types.ConversionDone}))
	require.NoError(t, l.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	runs, err := again.Runs("x.pdf")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
