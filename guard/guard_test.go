package guard

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.faceguard.dev/faceguard/access"
	"go.faceguard.dev/faceguard/db"
	"go.faceguard.dev/faceguard/db/models"
	"go.faceguard.dev/faceguard/facedev"
	"go.faceguard.dev/faceguard/facedev/sim"
)

func descriptor(fill int16) []int16 {
	d := make([]int16, facedev.DescriptorLength)
	for i := range d {
		d[i] = fill
	}
	return d
}

func prints(fill int16) *facedev.Faceprints {
	return &facedev.Faceprints{
		Version:        9,
		AdaptiveNoMask: descriptor(fill),
		Enroll:         descriptor(fill),
	}
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	// A unique name per test, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	d, err := db.Open(context.Background(),
		fmt.Sprintf("file:faceguard-%x?mode=memory&cache=shared", rndName), time.Now)
	require.NoError(t, err)
	require.NoError(t, d.Init("test", nil, newTestLogger()))
	t.Cleanup(func() { _ = d.Close() })

	return d
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockReader struct {
	cards  chan uint32
	closed bool
}

func newMockReader() *mockReader {
	return &mockReader{cards: make(chan uint32, 16)}
}

func (r *mockReader) Read(ctx context.Context) (uint32, error) {
	select {
	case card := <-r.cards:
		return card, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (r *mockReader) Close() error {
	r.closed = true
	return nil
}

type mockWriter struct {
	mx     sync.Mutex
	sent   []uint32
	parity []uint32
}

func (w *mockWriter) SendW32(value uint32) error {
	w.mx.Lock()
	defer w.mx.Unlock()
	w.sent = append(w.sent, value)
	return nil
}

func (w *mockWriter) SendW32Parity(value uint32) error {
	w.mx.Lock()
	defer w.mx.Unlock()
	w.parity = append(w.parity, value)
	return nil
}

func (w *mockWriter) Close() error { return nil }

func saveUser(t *testing.T, d *db.DB, cardID, name string, fp *facedev.Faceprints) {
	t.Helper()
	user := &models.User{
		CardID:     cardID,
		Name:       name,
		Permission: access.PermissionMember,
		Faceprints: fp,
	}
	require.NoError(t, user.Save(d.NewContext(), d, false))
}

func loadEvents(t *testing.T, d *db.DB) []*models.Event {
	t.Helper()
	events, err := models.Events(d.NewContext(), d, nil)
	require.NoError(t, err)
	return events
}

func TestAuthenticateCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		card       uint32
		setup      func(t *testing.T, d *db.DB)
		device     *sim.Device
		expGranted bool
		expReason  string
		expSent    []uint32
	}{
		{
			name:      "err/card not registered",
			card:      1110447364,
			setup:     func(*testing.T, *db.DB) {},
			device:    sim.New(),
			expReason: "card not registered",
		},
		{
			name: "err/no enrolled faceprints",
			card: 1110447364,
			setup: func(t *testing.T, d *db.DB) {
				saveUser(t, d, "1110447364", "alice", nil)
			},
			device:    sim.New(),
			expReason: "no enrolled faceprints",
		},
		{
			name: "err/no face detected",
			card: 1110447364,
			setup: func(t *testing.T, d *db.DB) {
				saveUser(t, d, "1110447364", "alice", prints(3))
			},
			device:    sim.New(sim.WithExtraction(facedev.StatusNoFaceDetected, nil)),
			expReason: "NoFaceDetected",
		},
		{
			name: "err/success without faceprints",
			card: 1110447364,
			setup: func(t *testing.T, d *db.DB) {
				saveUser(t, d, "1110447364", "alice", prints(3))
			},
			device:    sim.New(sim.WithExtraction(facedev.StatusSuccess, nil)),
			expReason: "camera error",
		},
		{
			name: "err/face not recognized",
			card: 1110447364,
			setup: func(t *testing.T, d *db.DB) {
				saveUser(t, d, "1110447364", "alice", prints(-1))
			},
			device:    sim.New(sim.WithExtraction(facedev.StatusSuccess, prints(1))),
			expReason: "face not recognized",
		},
		{
			name: "ok/access granted",
			card: 1110447364,
			setup: func(t *testing.T, d *db.DB) {
				saveUser(t, d, "1110447364", "alice", prints(3))
			},
			device:     sim.New(sim.WithExtraction(facedev.StatusSuccess, prints(3))),
			expGranted: true,
			expSent:    []uint32{1110447364},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := newTestDB(t)
			tt.setup(t, d)
			reader := newMockReader()
			writer := &mockWriter{}

			g, err := New(d, reader, tt.device,
				WithWriter(writer), WithLogger(newTestLogger()))
			require.NoError(t, err)

			res := g.AuthenticateCard(d.NewContext(), tt.card)
			assert.Equal(t, tt.expGranted, res.Granted)
			assert.Equal(t, tt.expReason, res.Reason)
			assert.Equal(t, tt.expSent, writer.sent)

			events := loadEvents(t, d)
			require.Len(t, events, 1)
			if tt.expGranted {
				assert.Equal(t, models.DecisionGranted, events[0].Decision)
				assert.True(t, events[0].Score.Valid)
			} else {
				assert.Equal(t, models.DecisionDenied, events[0].Decision)
				assert.Equal(t, tt.expReason, events[0].Reason)
			}
		})
	}
}

func TestRunCooldown(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	saveUser(t, d, "1110447364", "alice", prints(3))
	reader := newMockReader()
	device := sim.New(sim.WithExtraction(facedev.StatusSuccess, prints(3)))

	g, err := New(d, reader, device,
		WithLogger(newTestLogger()), WithCooldown(time.Minute))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- g.Run(ctx)
	}()

	// The second read of the same card falls within the cooldown period and
	// must be ignored.
	reader.cards <- 1110447364
	reader.cards <- 1110447364

	require.Eventually(t, func() bool {
		return len(loadEvents(t, d)) == 1
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Len(t, loadEvents(t, d), 1)
}

func TestIdentify(t *testing.T) {
	t.Parallel()

	t.Run("ok/matches enrolled user", func(t *testing.T) {
		t.Parallel()
		d := newTestDB(t)
		saveUser(t, d, "1110447364", "alice", prints(3))
		saveUser(t, d, "1241789444", "bob", prints(-1))
		device := sim.New(sim.WithExtraction(facedev.StatusSuccess, prints(3)))

		g, err := New(d, newMockReader(), device, WithLogger(newTestLogger()))
		require.NoError(t, err)

		res, err := g.Identify(d.NewContext(), nil)
		require.NoError(t, err)
		assert.True(t, res.Granted)
		require.NotNil(t, res.User)
		assert.Equal(t, "alice", res.User.Name)
		assert.Equal(t, "1110447364", res.CardID)
	})

	t.Run("err/no face detected", func(t *testing.T) {
		t.Parallel()
		d := newTestDB(t)
		device := sim.New(sim.WithExtraction(facedev.StatusNoFaceDetected, nil))

		g, err := New(d, newMockReader(), device, WithLogger(newTestLogger()))
		require.NoError(t, err)

		res, err := g.Identify(d.NewContext(), nil)
		require.NoError(t, err)
		assert.False(t, res.Granted)
		assert.Equal(t, "NoFaceDetected", res.Reason)
	})

	t.Run("err/success without faceprints", func(t *testing.T) {
		t.Parallel()
		d := newTestDB(t)
		saveUser(t, d, "1110447364", "alice", prints(3))
		device := sim.New(sim.WithExtraction(facedev.StatusSuccess, nil))

		g, err := New(d, newMockReader(), device, WithLogger(newTestLogger()))
		require.NoError(t, err)

		res, err := g.Identify(d.NewContext(), nil)
		require.NoError(t, err)
		assert.False(t, res.Granted)
		assert.Equal(t, "camera error", res.Reason)
	})
}
