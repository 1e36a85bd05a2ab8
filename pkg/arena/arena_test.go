package arena

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

func TestQuery_ClosestObstacleWins(t *testing.T) {
	a, err := New("test", 100, 100,
		Segment(physics.Vector2D{X: 50, Y: -10}, physics.Vector2D{X: 50, Y: 10}),
		Circle(physics.Vector2D{X: 30, Y: 0}, 5),
	)
	require.NoError(t, err)

	hit, ok := a.Query(physics.Vector2D{}, physics.Vector2D{X: 100})
	require.True(t, ok)
	assert.InDelta(t, 25, hit.X, 1e-9)
	assert.InDelta(t, 0, hit.Y, 1e-9)
}

func TestQuery_Box(t *testing.T) {
	a, err := New("test", 100, 100, Box(physics.Vector2D{X: 50, Y: 50}, 20, 10))
	require.NoError(t, err)

	hit, ok := a.Query(physics.Vector2D{X: 50, Y: 0}, physics.Vector2D{X: 50, Y: 100})
	require.True(t, ok)
	assert.InDelta(t, 45, hit.Y, 1e-9)

	_, ok = a.Query(physics.Vector2D{X: 0, Y: 0}, physics.Vector2D{X: 30, Y: 0})
	assert.False(t, ok)
}

func TestQuery_HitLiesOnSegment(t *testing.T) {
	a := DefaultScene()
	origin := physics.Vector2D{X: 640, Y: 360}
	for deg := 0.0; deg < 360; deg += 15 {
		end := origin.Add(physics.FromAngle(physics.Radians(deg), 2000))
		hit, ok := a.Query(origin, end)
		require.True(t, ok, "the border encloses the field at %v°", deg)
		along := origin.Distance(hit) + hit.Distance(end)
		assert.InDelta(t, origin.Distance(end), along, 1e-6)
	}
}

func TestQuery_ConcurrentUse(t *testing.T) {
	a := DefaultScene()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			origin := physics.Vector2D{X: 100 + float64(i), Y: 100}
			_, ok := a.Query(origin, origin.Add(physics.Vector2D{X: 2000}))
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
}

func TestFree(t *testing.T) {
	a := DefaultScene()
	assert.True(t, a.Free(physics.Vector2D{X: 640, Y: 360}, 10))
	assert.False(t, a.Free(physics.Vector2D{X: 300, Y: 300}, 10))
	assert.False(t, a.Free(physics.Vector2D{X: 1000, Y: 400}, 10))
	assert.False(t, a.Free(physics.Vector2D{X: 2, Y: 360}, 10))
}

func TestSceneRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, SaveScene(DefaultScene(), path))

	loaded, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultScene(), loaded)
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New("bad", 10, 10, Obstacle{Kind: "triangle"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}
