package postgres

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_CompressionRoundTrip(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	changes := map[string]any{
		"note": strings.Repeat("descrição longa ", 2000),
	}
	payload, err := json.Marshal(changes)
	require.NoError(t, err)
	require.Greater(t, len(payload), svc.compressThreshold)

	compressed := svc.encoder.EncodeAll(payload, nil)
	assert.Less(t, len(compressed), len(payload))

	decompressed, err := svc.decoder.DecodeAll(compressed, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, decompressed)
}

func TestAuditService_SmallPayloadStaysRaw(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{"status": "CONCLUIDO"})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(payload), svc.compressThreshold)
}
