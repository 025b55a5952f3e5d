package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_ExclusionPorClave(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.Obtain(ctx, "retention:cycle:tenant-1:3", time.Minute)
	require.NoError(t, err)

	// Misma clave: tomado.
	_, err = l.Obtain(ctx, "retention:cycle:tenant-1:3", time.Minute)
	assert.ErrorIs(t, err, ErrLockNotObtained)

	// Otra clave: independiente.
	release2, err := l.Obtain(ctx, "retention:cycle:tenant-2:3", time.Minute)
	require.NoError(t, err)
	release2()

	// Tras liberar se puede volver a tomar.
	release()
	release3, err := l.Obtain(ctx, "retention:cycle:tenant-1:3", time.Minute)
	require.NoError(t, err)
	release3()
}
