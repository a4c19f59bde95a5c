package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ai-capital/ai-capital-backend/internal/testdb"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	return NewService(NewRepo(testdb.New(t, &Message{})))
}

func seed(t *testing.T, s *Service, address string, success ...bool) []uint64 {
	t.Helper()

	ids := make([]uint64, 0, len(success))
	for i, ok := range success {
		msg := &Message{
			UserAddress:    address,
			Token:          "0x13A0c5930C028511Dc02665E7285134B6d11A5f4",
			TradeType:      TradeTypeBuy,
			Allocation:     "1",
			Pitch:          fmt.Sprintf("pitch number %d", i),
			AIResponseText: "I'm out.",
			Success:        ok,
		}
		require.NoError(t, s.Append(context.Background(), msg))
		require.NotZero(t, msg.ID)
		require.False(t, msg.Timestamp.IsZero())

		ids = append(ids, msg.ID)
	}

	return ids
}

func TestUnitQueryPaginationCompleteness(t *testing.T) {
	s := newTestService(t)
	ids := seed(t, s, "0xaaa", make([]bool, 23)...)

	var (
		seen   []uint64
		cursor *uint64
	)
	for {
		page, err := s.Query(context.Background(), Query{Cursor: cursor, Limit: 5})
		require.NoError(t, err)

		if page.NextCursor == nil {
			require.Empty(t, page.Messages)
			break
		}

		require.LessOrEqual(t, len(page.Messages), 5)
		for _, m := range page.Messages {
			seen = append(seen, m.ID)
		}
		require.Equal(t, page.Messages[len(page.Messages)-1].ID, *page.NextCursor)

		cursor = page.NextCursor
	}

	require.Len(t, seen, len(ids))
	for i := 1; i < len(seen); i++ {
		require.Greater(t, seen[i-1], seen[i], "ids must strictly descend")
	}
	require.ElementsMatch(t, ids, seen)
}

func TestUnitQueryIsIdempotent(t *testing.T) {
	s := newTestService(t)
	ids := seed(t, s, "0xaaa", false, true, false, false)

	cursor := ids[3]
	first, err := s.Query(context.Background(), Query{Cursor: &cursor, Limit: 2})
	require.NoError(t, err)
	second, err := s.Query(context.Background(), Query{Cursor: &cursor, Limit: 2})
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, []uint64{ids[2], ids[1]}, []uint64{first.Messages[0].ID, first.Messages[1].ID})
}

func TestUnitQueryByUser(t *testing.T) {
	s := newTestService(t)
	mine := seed(t, s, "0xaaa", true, false)
	seed(t, s, "0xbbb", false, false, false)

	page, err := s.Query(context.Background(), Query{UserAddress: "0xaaa"})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	require.Equal(t, mine[1], page.Messages[0].ID)
	require.Equal(t, mine[0], *page.NextCursor)
	for _, m := range page.Messages {
		require.Equal(t, "0xaaa", m.UserAddress)
	}
}

func TestUnitQueryEmpty(t *testing.T) {
	s := newTestService(t)

	page, err := s.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Empty(t, page.Messages)
	require.Nil(t, page.NextCursor)
}

func TestUnitScore(t *testing.T) {
	s := newTestService(t)
	seed(t, s, "0xaaa", true, false, true)
	seed(t, s, "0xbbb", false)

	score, err := s.Score(context.Background(), "0xaaa")
	require.NoError(t, err)
	require.Equal(t, int64(410), score)

	score, err = s.Score(context.Background(), " 0xAAA")
	require.NoError(t, err)
	require.Equal(t, int64(410), score)

	score, err = s.Score(context.Background(), "0xccc")
	require.NoError(t, err)
	require.Zero(t, score)
}

func TestUnitLeaderboard(t *testing.T) {
	s := newTestService(t)
	seed(t, s, "0xaaa", false, false)
	seed(t, s, "0xbbb", true)
	seed(t, s, "0xccc", false, false)

	list, err := s.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, []Score{
		{UserAddress: "0xbbb", Score: 200},
		{UserAddress: "0xaaa", Score: 20},
		{UserAddress: "0xccc", Score: 20},
	}, list)
}

func TestUnitAllKeepsInsertionOrder(t *testing.T) {
	s := newTestService(t)
	ids := seed(t, s, "0xaaa", true, false, false)

	list, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, m := range list {
		require.Equal(t, ids[i], m.ID)
	}
}

func TestUnitNormalizeLimit(t *testing.T) {
	for name, tc := range map[string]struct {
		limit    int
		expected int
	}{
		"zero":     {limit: 0, expected: DefaultLimit},
		"negative": {limit: -3, expected: DefaultLimit},
		"regular":  {limit: 7, expected: 7},
		"too big":  {limit: 1000, expected: MaxLimit},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, NormalizeLimit(tc.limit, DefaultLimit))
		})
	}
}
