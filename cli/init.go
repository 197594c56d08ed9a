package cli

import (
	"fmt"

	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	"go.faceguard.dev/faceguard/crypto"
	"go.faceguard.dev/faceguard/web/common"
)

// The Init command creates initial faceguard artifacts: the database schema,
// the configuration file, and the HTTP API token.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	if appCtx.VersionInit != "" {
		// TODO: Add --force option?
		return fmt.Errorf("faceguard is already initialized with version %s", appCtx.VersionInit)
	}

	token, err := crypto.RandomData(common.TokenLength)
	if err != nil {
		return err
	}

	err = appCtx.DB.Init(appCtx.Version.Version, crypto.Hash("", token), appCtx.Logger)
	if err != nil {
		return aerrors.NewWithCause("failed initializing database", err)
	}

	if err = appCtx.Config.Save(); err != nil {
		return aerrors.NewWithCause("failed writing configuration file", err,
			"path", appCtx.Config.Path())
	}

	// The token is only shown once; the database stores its hash.
	fmt.Fprintf(appCtx.Stdout, "API token: %s\n", common.EncodeToken(token))

	return nil
}
