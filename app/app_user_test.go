package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.faceguard.dev/faceguard/access"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	"go.faceguard.dev/faceguard/db/models"
	"go.faceguard.dev/faceguard/facedev"
	"go.faceguard.dev/faceguard/facedev/sim"
)

func testPrints(fill int16) *facedev.Faceprints {
	d := make([]int16, facedev.DescriptorLength)
	for i := range d {
		d[i] = fill
	}
	return &facedev.Faceprints{
		AdaptiveNoMask: d,
		Enroll:         d,
	}
}

func TestAppUserIntegration(t *testing.T) {
	t.Parallel()

	enrollPrints := testPrints(3)

	tests := []struct {
		name      string
		args      []string
		expStdout string
		expStderr string
		expErr    string
		expUsers  []*models.User
	}{
		{
			name: "ok/add_basic",
			args: []string{"add", "alice", "1110447364"},
			expUsers: []*models.User{
				{
					ID:         1,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "1110447364",
					Name:       "alice",
					Permission: access.PermissionMember,
				},
			},
		},
		{
			name:      "ok/add_enrolled",
			args:      []string{"add", "bob", "2864434397", "--permission", "admin", "--enroll"},
			expStdout: "Look at the camera...\n",
			expUsers: []*models.User{
				{
					ID:         1,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "1110447364",
					Name:       "alice",
					Permission: access.PermissionMember,
				},
				{
					ID:         2,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "2864434397",
					Name:       "bob",
					Permission: access.PermissionAdmin,
					Faceprints: enrollPrints,
				},
			},
		},
		{
			name:   "err/invalid_card_id",
			args:   []string{"add", "carol", "99999999999"},
			expErr: "invalid card ID '99999999999'",
			expUsers: []*models.User{
				{
					ID:         1,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "1110447364",
					Name:       "alice",
					Permission: access.PermissionMember,
				},
				{
					ID:         2,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "2864434397",
					Name:       "bob",
					Permission: access.PermissionAdmin,
					Faceprints: enrollPrints,
				},
			},
		},
		{
			name:   "err/user_exists",
			args:   []string{"add", "alice", "123"},
			expErr: "user with name 'alice' already exists",
			expUsers: []*models.User{
				{
					ID:         1,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "1110447364",
					Name:       "alice",
					Permission: access.PermissionMember,
				},
				{
					ID:         2,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "2864434397",
					Name:       "bob",
					Permission: access.PermissionAdmin,
					Faceprints: enrollPrints,
				},
			},
		},
		{
			name: "ok/list",
			args: []string{"ls"},
			expStdout: "" +
				" NAME   CARD ID     PERMISSION  ENROLLED \n" +
				" alice  1110447364  member      no       \n" +
				" bob    2864434397  admin       yes      \n",
			expUsers: []*models.User{
				{
					ID:         1,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "1110447364",
					Name:       "alice",
					Permission: access.PermissionMember,
				},
				{
					ID:         2,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "2864434397",
					Name:       "bob",
					Permission: access.PermissionAdmin,
					Faceprints: enrollPrints,
				},
			},
		},
		{
			name: "ok/show",
			args: []string{"show", "bob"},
			expStdout: "" +
				"Name:        bob\n" +
				"Card ID:     2864434397\n" +
				"Permission:  admin\n" +
				"Enrolled:    yes\n" +
				"Created:     2025-01-01 00:00:00\n" +
				"Updated:     2025-01-01 00:00:00\n",
			expUsers: []*models.User{
				{
					ID:         1,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "1110447364",
					Name:       "alice",
					Permission: access.PermissionMember,
				},
				{
					ID:         2,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "2864434397",
					Name:       "bob",
					Permission: access.PermissionAdmin,
					Faceprints: enrollPrints,
				},
			},
		},
		{
			name: "ok/remove",
			args: []string{"rm", "alice"},
			expUsers: []*models.User{
				{
					ID:         2,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "2864434397",
					Name:       "bob",
					Permission: access.PermissionAdmin,
					Faceprints: enrollPrints,
				},
			},
		},
		{
			name:   "err/remove_user_doesnot_exist",
			args:   []string{"rm", "alice"},
			expErr: "user with name 'alice' doesn't exist",
			expUsers: []*models.User{
				{
					ID:         2,
					CreatedAt:  timeNow,
					UpdatedAt:  timeNow,
					CardID:     "2864434397",
					Name:       "bob",
					Permission: access.PermissionAdmin,
					Faceprints: enrollPrints,
				},
			},
		},
	}

	tctx, cancel, h := newTestContext(t, 5*time.Second)
	defer cancel()

	app, err := newTestApp(tctx,
		WithDeviceOpener(func(_ string) (facedev.Authenticator, error) {
			return sim.New(sim.WithExtraction(facedev.StatusSuccess, enrollPrints)), nil
		}),
	)
	h(assert.NoError(t, err))

	err = initTestDB(app.ctx, nil)
	h(assert.NoError(t, err))

	for _, tt := range tests {
		args := []string{"user"}
		t.Run(tt.name, func(t *testing.T) {
			args = append(args, tt.args...)
			err = app.Run(args...)
			stdout := app.stdout.String()
			stderr := app.stderr.String()

			var serr *aerrors.StructuredError
			if errors.As(err, &serr) && serr.Cause() != nil {
				err = serr.Cause()
			}

			if tt.expErr != "" {
				h(assert.ErrorContains(t, err, tt.expErr))
			} else {
				h(assert.NoError(t, err))
			}

			h(assert.Equal(t, tt.expStdout, stdout))
			h(assert.Equal(t, tt.expStderr, stderr))

			users, err := models.Users(app.ctx.DB.NewContext(), app.ctx.DB, nil)
			h(assert.NoError(t, err))
			h(assert.Equal(t, tt.expUsers, users))
		})
	}
}
