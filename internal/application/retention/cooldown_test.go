package retention

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV CooldownStore en memoria para tests.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
	err  error // si no es nil, Get/Set fallan con este error
}

func newMemKV() *memKV { return &memKV{data: make(map[string]string)} }

func (s *memKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

func TestCooldownGate_Key(t *testing.T) {
	gate := NewCooldownGate(newMemKV(), time.Hour)
	assert.Equal(t, "retention:lastWarnAt:tenant-1:3", gate.Key("tenant-1", 3))
}

func TestCooldownGate_SinRegistroPrevio_Abierto(t *testing.T) {
	gate := NewCooldownGate(newMemKV(), 24*time.Hour)

	open, err := gate.Open(context.Background(), "tenant-1", 3, time.Now())
	require.NoError(t, err)
	assert.True(t, open, "sin registro previo el gate está abierto")
}

func TestCooldownGate_TouchCierraHastaCumplirVentana(t *testing.T) {
	kv := newMemKV()
	gate := NewCooldownGate(kv, 24*time.Hour)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, gate.Touch(ctx, "tenant-1", 3, now))

	// Una hora después: cerrado.
	open, err := gate.Open(ctx, "tenant-1", 3, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, open)

	// Justo antes de la ventana: cerrado.
	open, err = gate.Open(ctx, "tenant-1", 3, now.Add(24*time.Hour-time.Millisecond))
	require.NoError(t, err)
	assert.False(t, open)

	// Exactamente en la ventana: abierto (≥, no >).
	open, err = gate.Open(ctx, "tenant-1", 3, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, open)
}

// Cada combinación (tenant, months) lleva su propio cooldown: cambiar la
// ventana efectiva re-evalúa de inmediato aunque el ajuste anterior siga frío.
func TestCooldownGate_ClavesIndependientesPorMeses(t *testing.T) {
	gate := NewCooldownGate(newMemKV(), 24*time.Hour)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, gate.Touch(ctx, "tenant-1", 3, now))

	open3, err := gate.Open(ctx, "tenant-1", 3, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, open3)

	open12, err := gate.Open(ctx, "tenant-1", 12, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, open12, "months distinto usa otra clave y arranca abierto")

	openOtro, err := gate.Open(ctx, "tenant-2", 3, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, openOtro, "el cooldown de un tenant no afecta a otro")
}

// Un valor corrupto en el KV se trata como ausente: gate abierto y el próximo
// Touch lo repara.
func TestCooldownGate_ValorCorrupto_SeTrataComoAusente(t *testing.T) {
	kv := newMemKV()
	gate := NewCooldownGate(kv, 24*time.Hour)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, kv.Set(ctx, gate.Key("tenant-1", 3), "no-es-un-timestamp"))

	open, err := gate.Open(ctx, "tenant-1", 3, now)
	require.NoError(t, err)
	assert.True(t, open)

	require.NoError(t, gate.Touch(ctx, "tenant-1", 3, now))
	val, ok, err := kv.Get(ctx, gate.Key("tenant-1", 3))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 10), val)
}

func TestCooldownGate_ErrorDeKV_SePropaga(t *testing.T) {
	kv := newMemKV()
	kv.err = errors.New("redis caído")
	gate := NewCooldownGate(kv, 24*time.Hour)

	_, err := gate.Open(context.Background(), "tenant-1", 3, time.Now())
	assert.Error(t, err)

	err = gate.Touch(context.Background(), "tenant-1", 3, time.Now())
	assert.Error(t, err)
}

func TestCooldownGate_VentanaNoPositivaUsaDefault(t *testing.T) {
	gate := NewCooldownGate(newMemKV(), 0)
	assert.Equal(t, DefaultCooldown, gate.window)
}
