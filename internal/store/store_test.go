package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytracker/api/internal/model"
)

func gateways(t *testing.T) map[string]func(t *testing.T) Gateway {
	return map[string]func(t *testing.T) Gateway{
		"memory": func(t *testing.T) Gateway {
			return NewMemoryGateway(nil)
		},
		"bolt": func(t *testing.T) Gateway {
			g, err := OpenBolt(filepath.Join(t.TempDir(), "courses.db"), nil)
			require.NoError(t, err)
			t.Cleanup(func() { g.Close() })
			return g
		},
	}
}

// waitFor reads snapshots until match accepts one.
func waitFor(t *testing.T, sub *Subscription, match func(model.Collection) bool) model.Collection {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snapshot, ok := <-sub.C:
			require.True(t, ok, "subscription closed")
			if match(snapshot) {
				return snapshot
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
			return nil
		}
	}
}

func TestGateway(t *testing.T) {
	for name, open := range gateways(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("first snapshot of empty store is empty", func(t *testing.T) {
				g := open(t)
				sub, err := g.Subscribe(context.Background(), CoursesPath)
				require.NoError(t, err)
				defer sub.Close()

				snapshot := waitFor(t, sub, func(model.Collection) bool { return true })
				assert.Empty(t, snapshot)
			})

			t.Run("append assigns ids in creation order", func(t *testing.T) {
				g := open(t)
				ctx := context.Background()

				first, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: "Biology"})
				require.NoError(t, err)
				second, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: "Chemistry"})
				require.NoError(t, err)
				assert.NotEqual(t, first, second)

				sub, err := g.Subscribe(ctx, CoursesPath)
				require.NoError(t, err)
				defer sub.Close()

				snapshot := waitFor(t, sub, func(c model.Collection) bool { return len(c) == 2 })
				assert.Equal(t, []string{first, second}, snapshot.IDs())
				assert.Equal(t, "Biology", snapshot[0].Name)
				assert.Empty(t, snapshot[0].StudySessions)
				assert.Empty(t, snapshot[0].QCMExams)
			})

			t.Run("update replaces only the given fields", func(t *testing.T) {
				g := open(t)
				ctx := context.Background()

				id, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: "Physics"})
				require.NoError(t, err)

				sessions := model.StudySessions{{Date: "2024-03-01", Duration: 45}, {Date: "2024-03-02", Duration: 30}}
				require.NoError(t, g.Update(ctx, CoursePath(id), Patch{StudySessions: sessions}))
				target := 6
				require.NoError(t, g.Update(ctx, CoursePath(id), Patch{
					SessionTarget: &target,
					QCMExams:      model.QCMExams{{Date: "2024-03-03", Score: 72}},
				}))

				sub, err := g.Subscribe(ctx, CoursesPath)
				require.NoError(t, err)
				defer sub.Close()

				snapshot := waitFor(t, sub, func(c model.Collection) bool { return len(c) == 1 })
				course := snapshot[0]
				assert.Equal(t, "Physics", course.Name)
				assert.Equal(t, 6, course.SessionTarget)
				assert.Equal(t, sessions, course.StudySessions)
				assert.Equal(t, model.QCMExams{{Date: "2024-03-03", Score: 72}}, course.QCMExams)
			})

			t.Run("missing nodes report not found", func(t *testing.T) {
				g := open(t)
				ctx := context.Background()

				assert.ErrorIs(t, g.Update(ctx, CoursePath("nope"), Patch{}), ErrNotFound)
				assert.ErrorIs(t, g.Remove(ctx, CoursePath("nope")), ErrNotFound)
			})

			t.Run("invalid paths are rejected", func(t *testing.T) {
				g := open(t)
				ctx := context.Background()

				_, err := g.AppendChild(ctx, CoursePath("x"), model.Course{Name: "x"})
				assert.ErrorIs(t, err, ErrInvalidPath)
				assert.ErrorIs(t, g.Update(ctx, CoursesPath, Patch{}), ErrInvalidPath)
				assert.ErrorIs(t, g.Remove(ctx, "users/1"), ErrInvalidPath)
				_, err = g.Subscribe(ctx, CoursePath("x"))
				assert.ErrorIs(t, err, ErrInvalidPath)
			})

			t.Run("subscribers see removals", func(t *testing.T) {
				g := open(t)
				ctx := context.Background()

				keep, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: "Keep"})
				require.NoError(t, err)
				drop, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: "Drop"})
				require.NoError(t, err)

				sub, err := g.Subscribe(ctx, CoursesPath)
				require.NoError(t, err)
				defer sub.Close()
				waitFor(t, sub, func(c model.Collection) bool { return len(c) == 2 })

				require.NoError(t, g.Remove(ctx, CoursePath(drop)))

				snapshot := waitFor(t, sub, func(c model.Collection) bool { return len(c) == 1 })
				assert.Equal(t, []string{keep}, snapshot.IDs())
				_, found := snapshot.Find(drop)
				assert.False(t, found)
			})

			t.Run("removing the collection clears every course", func(t *testing.T) {
				g := open(t)
				ctx := context.Background()

				_, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: "One"})
				require.NoError(t, err)
				require.NoError(t, g.Remove(ctx, CoursesPath))

				sub, err := g.Subscribe(ctx, CoursesPath)
				require.NoError(t, err)
				defer sub.Close()
				assert.Empty(t, waitFor(t, sub, func(model.Collection) bool { return true }))
			})
		})
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	g := NewMemoryGateway(nil)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := g.Subscribe(ctx, CoursesPath)
	require.NoError(t, err)
	<-sub.C

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not end")
	}
	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestSubscriptionKeepsNewestSnapshot(t *testing.T) {
	g := NewMemoryGateway(nil)
	ctx := context.Background()

	sub, err := g.Subscribe(ctx, CoursesPath)
	require.NoError(t, err)
	defer sub.Close()

	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: name})
		require.NoError(t, err)
	}

	snapshot := waitFor(t, sub, func(c model.Collection) bool { return len(c) == 4 })
	assert.Len(t, snapshot, 4)
}

func TestSnapshotsDoNotAliasStore(t *testing.T) {
	g := NewMemoryGateway(nil)
	ctx := context.Background()

	id, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: "History"})
	require.NoError(t, err)
	require.NoError(t, g.Update(ctx, CoursePath(id), Patch{StudySessions: model.StudySessions{{Date: "2024-01-01", Duration: 10}}}))

	first, err := g.load(ctx)
	require.NoError(t, err)
	first[0].StudySessions[0].Duration = 999

	second, err := g.load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, second[0].StudySessions[0].Duration)
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "courses.db")
	ctx := context.Background()

	g, err := OpenBolt(path, nil)
	require.NoError(t, err)
	id, err := g.AppendChild(ctx, CoursesPath, model.Course{Name: "Geology"})
	require.NoError(t, err)
	require.NoError(t, g.Update(ctx, CoursePath(id), Patch{QCMExams: model.QCMExams{{Date: "2024-02-02", Score: 64}}}))
	require.NoError(t, g.Close())

	reopened, err := OpenBolt(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	snapshot, err := reopened.load(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, id, snapshot[0].ID)
	assert.Equal(t, 64.0, snapshot[0].QCMExams[0].Score)
}

func TestSplitPath(t *testing.T) {
	id, err := splitPath("courses")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = splitPath("/courses/abc/")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	for _, bad := range []string{"", "course", "courses/a/b", "users/a"} {
		_, err := splitPath(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestFirstSnapshot(t *testing.T) {
	g := NewMemoryGateway(nil)
	ctx := context.Background()

	courses, err := FirstSnapshot(ctx, g)
	require.NoError(t, err)
	assert.Empty(t, courses)

	_, err = g.AppendChild(ctx, CoursesPath, model.Course{Name: "Logic"})
	require.NoError(t, err)

	courses, err = FirstSnapshot(ctx, g)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Logic", courses[0].Name)
}
