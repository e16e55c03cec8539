package tenant_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestScope(t *testing.T) {
	t.Parallel()

	t.Run("push pop roundtrip", func(t *testing.T) {
		t.Parallel()

		ctx, scope := tenant.NewScope(context.Background())

		_, ok := tenant.FromContext(ctx)
		assert.False(t, ok, "fresh scope must be empty")

		tc := tenant.Context{ID: 1, Slug: "acme", DBAlias: "db_acme"}
		require.NoError(t, scope.Push(tc))

		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, tc, got)

		popped, ok := scope.Pop()
		require.True(t, ok)
		assert.Equal(t, tc, popped)

		_, ok = tenant.FromContext(ctx)
		assert.False(t, ok, "scope must be empty after pop")
	})

	t.Run("push into occupied scope fails", func(t *testing.T) {
		t.Parallel()

		_, scope := tenant.NewScope(context.Background())
		require.NoError(t, scope.Push(tenant.Context{Slug: "a", DBAlias: "db_a"}))

		err := scope.Push(tenant.Context{Slug: "b", DBAlias: "db_b"})
		assert.ErrorIs(t, err, tenant.ErrScopeOccupied)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		t.Parallel()

		_, scope := tenant.NewScope(context.Background())
		require.NoError(t, scope.Push(tenant.Context{Slug: "a", DBAlias: "db_a"}))

		scope.Clear()
		scope.Clear()

		_, ok := scope.Active()
		assert.False(t, ok)

		require.NoError(t, scope.Push(tenant.Context{Slug: "b", DBAlias: "db_b"}),
			"cleared scope accepts a new context")
	})

	t.Run("pop on empty scope", func(t *testing.T) {
		t.Parallel()

		_, scope := tenant.NewScope(context.Background())
		_, ok := scope.Pop()
		assert.False(t, ok)
	})
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	t.Run("with context installs tenant", func(t *testing.T) {
		t.Parallel()

		tc := tenant.Context{ID: 7, Slug: "acme", DBAlias: "db_acme"}
		ctx := tenant.WithContext(context.Background(), tc)

		alias, ok := tenant.DBAliasFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "db_acme", alias)

		assert.Equal(t, tc, tenant.MustFromContext(ctx))
	})

	t.Run("must panics without tenant", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			tenant.MustFromContext(context.Background())
		})
	})

	t.Run("logger extractor", func(t *testing.T) {
		t.Parallel()

		extract := tenant.LoggerExtractor()

		_, ok := extract(context.Background())
		assert.False(t, ok)

		ctx := tenant.WithContext(context.Background(), tenant.Context{Slug: "acme", DBAlias: "db_acme"})
		attr, ok := extract(ctx)
		require.True(t, ok)
		assert.Equal(t, "tenant", attr.Key)
	})
}

func TestScope_SequentialReuse(t *testing.T) {
	t.Parallel()

	// Simulates a reused worker: a sequence of units of work, each with its
	// own scope; the slot must be empty between every pair.
	tenants := []tenant.Context{
		{ID: 1, Slug: "a", DBAlias: "db_a"},
		{ID: 2, Slug: "b", DBAlias: "db_b"},
		{ID: 3, Slug: "c", DBAlias: "db_c"},
	}

	for _, tc := range tenants {
		ctx, scope := tenant.NewScope(context.Background())

		_, ok := scope.Active()
		require.False(t, ok, "slot must be empty before unit of work")

		require.NoError(t, scope.Push(tc))
		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		require.Equal(t, tc.DBAlias, got.DBAlias)

		scope.Clear()
		_, ok = scope.Active()
		require.False(t, ok, "slot must be empty after unit of work")
	}
}

func TestScope_ConcurrentUnitsOfWork(t *testing.T) {
	t.Parallel()

	// Each goroutine owns its own scope; contexts must never cross.
	const workers = 50
	const iterations = 200

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := range workers {
		go func(id int) {
			defer wg.Done()

			want := tenant.Context{ID: int64(id), Slug: "t", DBAlias: "db"}
			for range iterations {
				ctx, scope := tenant.NewScope(context.Background())
				if err := scope.Push(want); err != nil {
					t.Error(err)
					return
				}
				got, ok := tenant.FromContext(ctx)
				if !ok || got.ID != want.ID {
					t.Errorf("cross-scope leak: got %+v want %+v", got, want)
					return
				}
				scope.Clear()
			}
		}(i)
	}

	wg.Wait()
}
