package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aeeconecta/aee-service/internal/models"
)

type recordingWriter struct {
	mu   sync.Mutex
	logs []models.LoginLog
	fail bool
}

func (w *recordingWriter) Create(_ context.Context, _ *gorm.DB, log *models.LoginLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("db down")
	}
	w.logs = append(w.logs, *log)
	return nil
}

func (w *recordingWriter) snapshot() []models.LoginLog {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.LoginLog(nil), w.logs...)
}

func TestBus_LoginRoundTrip(t *testing.T) {
	bus, err := NewBus(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := &recordingWriter{}
	require.NoError(t, bus.ConsumeLogins(ctx, writer))

	at := time.Date(2025, 3, 14, 9, 5, 7, 0, time.UTC)
	require.NoError(t, bus.PublishLogin(ctx, "123", at))

	assert.Eventually(t, func() bool { return len(writer.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := writer.snapshot()[0]
	assert.Equal(t, "123", got.RF)
	assert.Equal(t, "14/03/2025 09:05:07", got.DataHora)

	require.NoError(t, bus.Close())
}

func TestBus_WriterFailureIsAcked(t *testing.T) {
	bus, err := NewBus(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := &recordingWriter{fail: true}
	require.NoError(t, bus.ConsumeLogins(ctx, writer))

	require.NoError(t, bus.PublishLogin(ctx, "1", time.Now()))
	writer.mu.Lock()
	writer.fail = false
	writer.mu.Unlock()
	require.NoError(t, bus.PublishLogin(ctx, "2", time.Now()))

	assert.Eventually(t, func() bool {
		logs := writer.snapshot()
		return len(logs) >= 1 && logs[len(logs)-1].RF == "2"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Close())
}

type blockingWriter struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (w *blockingWriter) Create(ctx context.Context, _ *gorm.DB, _ *models.LoginLog) error {
	close(w.started)
	<-w.release
	w.ctxErr <- ctx.Err()
	return ctx.Err()
}

func TestBus_InFlightWriteSurvivesConsumerStop(t *testing.T) {
	bus, err := NewBus(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := &blockingWriter{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
	require.NoError(t, bus.ConsumeLogins(ctx, writer))
	require.NoError(t, bus.PublishLogin(context.Background(), "123", time.Now()))

	select {
	case <-writer.started:
	case <-time.After(2 * time.Second):
		t.Fatal("login event was not delivered")
	}

	cancel()
	close(writer.release)

	select {
	case err := <-writer.ctxErr:
		assert.NoError(t, err, "the login row must be written with a live context")
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not finish")
	}
	require.NoError(t, bus.Close())
}
