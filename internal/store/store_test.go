package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	t.Setenv("RESET_DB", "true")
	ctx := context.Background()

	st, err := Open(ctx, &config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(ctx) })

	require.NoError(t, st.Ping(ctx))
	n, err := st.Products.CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "postgres"}, zerolog.Nop())

	assert.EqualError(t, err, `unsupported DB_DRIVER "postgres"`)
}
