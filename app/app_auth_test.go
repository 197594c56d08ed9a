package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.faceguard.dev/faceguard/access"
	"go.faceguard.dev/faceguard/db/models"
	"go.faceguard.dev/faceguard/facedev"
	"go.faceguard.dev/faceguard/facedev/sim"
	gpiomock "go.faceguard.dev/faceguard/gpio/mock"
	gtypes "go.faceguard.dev/faceguard/gpio/types"
)

func TestAppAuthIntegration(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 10*time.Second)
	defer cancel()

	prints := testPrints(3)
	chip := gpiomock.New()
	app, err := newTestApp(tctx,
		WithGPIOOpener(func(_ int) (gtypes.Chip, error) {
			return chip, nil
		}),
		WithDeviceOpener(func(_ string) (facedev.Authenticator, error) {
			return sim.New(
				sim.WithExtraction(facedev.StatusSuccess, prints),
				sim.WithEnrolledIDs("1", "2"),
			), nil
		}),
	)
	h(assert.NoError(t, err))

	err = initTestDB(app.ctx, []*models.User{
		{
			Name:       "alice",
			CardID:     "1110447364",
			Permission: access.PermissionMember,
			Faceprints: prints,
		},
	})
	h(assert.NoError(t, err))

	promptCh := make(chan string)
	app.stdout.waitFor("Press space to authenticate", 0, promptCh)
	grantedCh := make(chan string)
	app.stdout.waitFor(`Authenticated: (\S+)`, 1, grantedCh)

	authDone := make(chan error, 1)
	go func() {
		authDone <- app.App.Run([]string{"auth"})
	}()

	select {
	case <-promptCh:
	case <-tctx.Done():
		t.Fatal("timed out waiting for the auth prompt")
	}

	// Space triggers an authentication attempt against the camera.
	_, err = app.stdin.Write([]byte(" "))
	h(assert.NoError(t, err))

	select {
	case name := <-grantedCh:
		h(assert.Equal(t, "alice", name))
	case <-tctx.Done():
		t.Fatal("timed out waiting for the authentication result")
	}

	// 'i' prints the info screen, including enrollments stored on the
	// device itself.
	infoCh := make(chan string)
	app.stdout.waitFor(`On-device enrollments: (\d+)`, 1, infoCh)
	_, err = app.stdin.Write([]byte("i"))
	h(assert.NoError(t, err))

	select {
	case count := <-infoCh:
		h(assert.Equal(t, "2", count))
	case <-tctx.Done():
		t.Fatal("timed out waiting for the info screen")
	}

	// 'q' quits the session.
	_, err = app.stdin.Write([]byte("q"))
	h(assert.NoError(t, err))

	select {
	case err = <-authDone:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the auth command to exit")
	}
}
