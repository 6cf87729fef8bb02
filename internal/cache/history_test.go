package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_RecordAndRecent(t *testing.T) {
	history, err := OpenHistory(t.TempDir())
	require.NoError(t, err)
	defer history.Close()

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		err := history.Record(Run{
			Source:    "main.c",
			Language:  "C",
			Status:    "success",
			Duration:  25 * time.Millisecond,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	runs, err := history.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first
	assert.True(t, runs[0].Timestamp.After(runs[1].Timestamp))
	assert.Equal(t, "C", runs[0].Language)
}

func TestHistory_Clear(t *testing.T) {
	history, err := OpenHistory(t.TempDir())
	require.NoError(t, err)
	defer history.Close()

	require.NoError(t, history.Record(Run{Source: "x.py", Status: "success"}))
	require.NoError(t, history.Clear())

	runs, err := history.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
