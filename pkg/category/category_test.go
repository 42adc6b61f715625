package category

import (
	"testing"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceImpl(t *testing.T) {
	ctx := test_utils.UserContext("user-1")

	t.Run("should list nothing before categories are stored", func(t *testing.T) {
		service := NewService(docstore.NewMemoryStore())

		categories, err := service.List(ctx)

		require.NoError(t, err)
		assert.Empty(t, categories)
		assert.NotNil(t, categories)
	})

	t.Run("should replace the whole list", func(t *testing.T) {
		service := NewService(docstore.NewMemoryStore())
		_, err := service.Replace(ctx, []Category{{Id: "math", Name: "Math"}, {Id: "art", Name: "Art"}})
		require.NoError(t, err)

		_, err = service.Replace(ctx, []Category{{Id: "physics", Name: "Physics", Color: "#00f"}})
		require.NoError(t, err)
		categories, err := service.List(ctx)

		require.NoError(t, err)
		assert.Equal(t, []Category{{Id: "physics", Name: "Physics", Color: "#00f"}}, categories)
	})

	t.Run("should reject duplicates and missing ids", func(t *testing.T) {
		service := NewService(docstore.NewMemoryStore())

		_, err := service.Replace(ctx, []Category{{Id: "math", Name: "Math"}, {Id: "math", Name: "Maths"}})
		assert.ErrorIs(t, err, ErrInvalidCategory)
		_, err = service.Replace(ctx, []Category{{Name: "No id"}})
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}
