package nonce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ai-capital/ai-capital-backend/internal/testdb"
)

func TestIntegrationRedisNonce(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	s := NewService(NewRedisRepo(testdb.NewRedis(t)))

	first, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	second, err := s.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), second)
}
