package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySyncGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("begin then clear", func(t *testing.T) {
		g := NewInMemorySyncGuard()

		ok, err := g.Begin(ctx, "card1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = g.Begin(ctx, "card1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "second begin must be refused while held")

		active, err := g.Active(ctx, "card1")
		require.NoError(t, err)
		assert.True(t, active)

		require.NoError(t, g.Clear(ctx, "card1"))
		ok, err = g.Begin(ctx, "card1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("cards are independent", func(t *testing.T) {
		g := NewInMemorySyncGuard()
		ok, err := g.Begin(ctx, "card1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = g.Begin(ctx, "card2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired mark can be reacquired", func(t *testing.T) {
		g := NewInMemorySyncGuard()
		ok, err := g.Begin(ctx, "card1", time.Millisecond)
		require.NoError(t, err)
		assert.True(t, ok)

		time.Sleep(5 * time.Millisecond)
		ok, err = g.Begin(ctx, "card1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("only one concurrent begin wins", func(t *testing.T) {
		g := NewInMemorySyncGuard()
		var wg sync.WaitGroup
		wins := make(chan bool, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := g.Begin(ctx, "card1", time.Minute)
				require.NoError(t, err)
				wins <- ok
			}()
		}
		wg.Wait()
		close(wins)

		won := 0
		for ok := range wins {
			if ok {
				won++
			}
		}
		assert.Equal(t, 1, won)
	})
}
