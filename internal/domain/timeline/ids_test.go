package timeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilestoneIDs(t *testing.T) {
	t.Run("local ids are unique and classified", func(t *testing.T) {
		a := NewLocalMilestoneID()
		b := NewLocalMilestoneID()
		assert.NotEqual(t, a, b)
		assert.True(t, strings.HasPrefix(a, "milestone-local-"))
		assert.True(t, IsLocal(a))
		assert.False(t, IsMirrored(a))
		assert.False(t, IsCreation(a))
	})

	t.Run("mirror ids are deterministic", func(t *testing.T) {
		assert.Equal(t, "milestone-att123", MirrorMilestoneID("att123"))
		assert.Equal(t, MirrorMilestoneID("att123"), MirrorMilestoneID("att123"))
		assert.True(t, IsMirrored("milestone-att123"))
	})

	t.Run("creation ids are exempt from mirror classification", func(t *testing.T) {
		id := CreationMilestoneID("507f191e810c19729de860ea")
		assert.Equal(t, "milestone-creation-507f191e810c19729de860ea", id)
		assert.True(t, IsCreation(id))
		assert.False(t, IsMirrored(id))
	})

	t.Run("source item id round trips", func(t *testing.T) {
		item, ok := SourceItemID("milestone-act789")
		assert.True(t, ok)
		assert.Equal(t, "act789", item)

		_, ok = SourceItemID(NewLocalMilestoneID())
		assert.False(t, ok)
		_, ok = SourceItemID(CreationMilestoneID("c1"))
		assert.False(t, ok)
	})
}
