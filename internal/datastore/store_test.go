package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsUnsupportedDriver(t *testing.T) {
	_, err := Open("postgres", "whatever")
	require.Error(t, err)
}

func TestCreateSessionAndSaveTransientRoundtrip(t *testing.T) {
	store, err := Open("sqlite", ":memory:")
	require.NoError(t, err)

	sessionID, err := store.CreateSession("/tmp/clip.wav", 16000)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	require.NoError(t, store.SaveTransient(sessionID, "onset", 120, 0.92))
	require.NoError(t, store.SaveTransient(sessionID, "offset", 340, 0.81))
	require.NoError(t, store.EndSession(sessionID))

	sessions, err := store.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.NotNil(t, sessions[0].EndedAt)

	records, err := store.ListTransients(sessionID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "onset", records[0].Kind)
	assert.Equal(t, 120, records[0].Index)
}
