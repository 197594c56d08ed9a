package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.faceguard.dev/faceguard/access"
	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	"go.faceguard.dev/faceguard/db/models"
	"go.faceguard.dev/faceguard/facedev"
)

// The User command manages enrolled users.
type User struct {
	Add struct {
		Name           string `arg:"" help:"The unique name of the user."`
		CardID         string `arg:"" name:"card-id" help:"The decimal card ID, as printed by 'faceguard card read'."`
		Permission     string `default:"member" enum:"admin,member,guest" help:"The user's permission level. Valid values: ${enum}"`
		Enroll         bool   `help:"Capture the user's faceprints from the camera." xor:"enrollment"`
		FaceprintsFile string `help:"Path to a JSON faceprints file to enroll from, instead of the camera." xor:"enrollment"`
	} `kong:"cmd,help='Add a new user.'"`
	Rm struct {
		Name string `arg:"" help:"The unique name of the user."`
	} `kong:"cmd,help='Remove a user.'"`
	Ls   struct{} `kong:"cmd,help='List users.'"`
	Show struct {
		Name string `arg:"" help:"The unique name of the user."`
	} `kong:"cmd,help='Show user details.'"`
}

// Run the user command.
func (c *User) Run(kctx *kong.Context, appCtx *actx.Context) error {
	dbCtx := appCtx.DB.NewContext()

	switch kctx.Args[1] {
	case "add":
		if _, err := strconv.ParseUint(c.Add.CardID, 10, 32); err != nil {
			return aerrors.NewWith(
				fmt.Sprintf("invalid card ID '%s'", c.Add.CardID),
				"hint", "card IDs are decimal 32-bit values")
		}
		permission, err := access.PermissionFromString(c.Add.Permission)
		if err != nil {
			return err
		}

		user := &models.User{
			Name:       c.Add.Name,
			CardID:     c.Add.CardID,
			Permission: permission,
		}
		switch {
		case c.Add.Enroll:
			if user.Faceprints, err = c.enroll(appCtx); err != nil {
				return err
			}
		case c.Add.FaceprintsFile != "":
			if user.Faceprints, err = c.enrollFromFile(appCtx); err != nil {
				return err
			}
		}

		if err = user.Save(dbCtx, appCtx.DB, false); err != nil {
			return aerrors.NewWithCause(
				fmt.Sprintf("failed adding user '%s'", c.Add.Name), err)
		}
	case "rm":
		user := &models.User{Name: c.Rm.Name}
		if err := user.Delete(dbCtx, appCtx.DB); err != nil {
			return err
		}
	case "ls":
		users, err := models.Users(dbCtx, appCtx.DB, nil)
		if err != nil {
			return aerrors.NewWithCause("failed listing users", err)
		}

		data := make([][]string, len(users))
		for i, user := range users {
			enrolled := "no"
			if user.Faceprints != nil {
				enrolled = "yes"
			}
			data[i] = []string{
				user.Name, user.CardID, string(user.Permission), enrolled,
			}
		}

		if len(data) > 0 {
			header := []string{"Name", "Card ID", "Permission", "Enrolled"}
			if err = renderTable(header, data, appCtx.Stdout); err != nil {
				return aerrors.NewWithCause("failed rendering table", err)
			}
		}
	case "show":
		user := &models.User{Name: c.Show.Name}
		if err := user.Load(dbCtx, appCtx.DB); err != nil {
			return err
		}

		enrolled := "no"
		if user.Faceprints != nil {
			enrolled = "yes"
		}
		w := tabwriter.NewWriter(appCtx.Stdout, 6, 2, 2, ' ', 0)
		fmt.Fprintf(w, "Name:\t%s\n", user.Name)
		fmt.Fprintf(w, "Card ID:\t%s\n", user.CardID)
		fmt.Fprintf(w, "Permission:\t%s\n", user.Permission)
		fmt.Fprintf(w, "Enrolled:\t%s\n", enrolled)
		fmt.Fprintf(w, "Created:\t%s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Updated:\t%s\n", user.UpdatedAt.Format("2006-01-02 15:04:05"))
		if err := w.Flush(); err != nil {
			return aerrors.NewWithCause("failed writing to stdout", err)
		}
	}

	return nil
}

func (c *User) enroll(appCtx *actx.Context) (*facedev.Faceprints, error) {
	device, err := openDevice(appCtx)
	if err != nil {
		return nil, err
	}
	defer device.Close()

	fmt.Fprintln(appCtx.Stdout, "Look at the camera...")
	status, prints, err := device.ExtractFaceprints(appCtx.Ctx, func(hint facedev.Hint) {
		fmt.Fprintln(appCtx.Stdout, hint.Message())
	})
	if err != nil {
		return nil, aerrors.NewWithCause("failed capturing faceprints", err)
	}
	if status != facedev.StatusSuccess {
		return nil, aerrors.NewWith("failed capturing faceprints", "status", status.String())
	}

	return prints, nil
}

func (c *User) enrollFromFile(appCtx *actx.Context) (*facedev.Faceprints, error) {
	data, err := vfs.ReadFile(appCtx.FS, c.Add.FaceprintsFile)
	if err != nil {
		return nil, aerrors.NewWithCause("failed reading faceprints file", err,
			"path", c.Add.FaceprintsFile)
	}

	prints := &facedev.Faceprints{}
	if err = json.Unmarshal(data, prints); err != nil {
		return nil, aerrors.NewWithCause("failed parsing faceprints file", err,
			"path", c.Add.FaceprintsFile)
	}
	if len(prints.AdaptiveNoMask) != facedev.DescriptorLength &&
		len(prints.Enroll) != facedev.DescriptorLength {
		return nil, aerrors.NewWith("faceprints file contains no valid descriptor",
			"path", c.Add.FaceprintsFile)
	}

	return prints, nil
}
