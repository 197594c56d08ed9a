package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.faceguard.dev/faceguard/access"
	"go.faceguard.dev/faceguard/db/types"
	"go.faceguard.dev/faceguard/facedev"
)

// User represents a person allowed to authenticate at the door. The card ID is
// the decimal value of the 32-bit Wiegand frame on their card, and the
// faceprints are the biometric descriptors captured during enrollment.
type User struct {
	ID         uint64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CardID     string
	Name       string
	Permission access.Permission
	Faceprints *facedev.Faceprints
}

// Save stores the user data in the database.
func (u *User) Save(ctx context.Context, d types.Querier, update bool) error {
	if _, err := access.PermissionFromString(u.Permission.String()); err != nil {
		return err
	}

	faceprints, err := marshalFaceprints(u.Faceprints)
	if err != nil {
		return err
	}

	timeNow := d.TimeNow().UTC()
	if update { //nolint:nestif // It's fine.
		var filter *types.Filter
		var filterStr string
		switch {
		case u.ID != 0:
			filter = &types.Filter{Where: "id = ?", Args: []any{u.ID}}
			filterStr = fmt.Sprintf("ID %d", u.ID)
		case u.Name != "":
			filter = &types.Filter{Where: "name = ?", Args: []any{u.Name}}
			filterStr = fmt.Sprintf("name '%s'", u.Name)
		case u.CardID != "":
			filter = &types.Filter{Where: "card_id = ?", Args: []any{u.CardID}}
			filterStr = fmt.Sprintf("card ID '%s'", u.CardID)
		default:
			return errNoUserLookup
		}

		args := append([]any{timeNow, u.Permission.String(), faceprints}, filter.Args...)
		updateStmt := fmt.Sprintf(`UPDATE users
			SET updated_at = ?, permission = ?, faceprints = ?
			WHERE %s`, filter.Where)
		res, err := d.ExecContext(ctx, updateStmt, args...)
		if err != nil {
			return types.Err("user", filterStr, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed getting affected rows: %w", err)
		}
		if n == 0 {
			return types.NoResultError{ModelName: "user", ID: filterStr}
		}
		if n > 1 {
			return types.IntegrityError{Msg: fmt.Sprintf("updated %d users", n)}
		}
		u.UpdatedAt = timeNow
	} else {
		insertStmt := `INSERT INTO users
		(id, created_at, updated_at, card_id, name, permission, faceprints)
		VALUES (NULL, ?, ?, ?, ?, ?, ?)`
		res, err := d.ExecContext(ctx, insertStmt,
			timeNow, timeNow, u.CardID, u.Name, u.Permission.String(), faceprints)
		if err != nil {
			return types.Err("user", fmt.Sprintf("name '%s'", u.Name), err)
		}

		u.ID, err = lastInsertID(res)
		if err != nil {
			return err
		}
		u.CreatedAt = timeNow
		u.UpdatedAt = timeNow
	}

	return nil
}

// Load the user data from the database. Either the user ID, Name or CardID
// must be set for the lookup.
func (u *User) Load(ctx context.Context, d types.Querier) error {
	filter, filterStr, err := u.lookupFilter("u.")
	if err != nil {
		return err
	}

	users, err := Users(ctx, d, filter)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		return types.NoResultError{ModelName: "user", ID: filterStr}
	}

	// This is dodgy, but the unique constraints on users.id, users.name and
	// users.card_id should return only a single result.
	if len(users) > 1 {
		panic(fmt.Sprintf("users query returned more than 1 user: %d", len(users)))
	}
	*u = *users[0]

	return nil
}

// Delete removes the user data from the database. Either the user ID, Name or
// CardID must be set for the lookup. It returns an error if the user doesn't
// exist.
func (u *User) Delete(ctx context.Context, d types.Querier) error {
	filter, filterStr, err := u.lookupFilter("")
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(`DELETE FROM users WHERE %s`, filter.Where)

	res, err := d.ExecContext(ctx, stmt, filter.Args...)
	if err != nil {
		return types.Err("user", filterStr, err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "user", ID: filterStr}
	}

	return nil
}

var errNoUserLookup = types.InvalidInputError{
	Msg: "either user ID, Name or CardID must be set"}

func (u *User) lookupFilter(prefix string) (*types.Filter, string, error) {
	switch {
	case u.ID != 0:
		return &types.Filter{Where: fmt.Sprintf("%sid = ?", prefix), Args: []any{u.ID}},
			fmt.Sprintf("ID %d", u.ID), nil
	case u.Name != "":
		return &types.Filter{Where: fmt.Sprintf("%sname = ?", prefix), Args: []any{u.Name}},
			fmt.Sprintf("name '%s'", u.Name), nil
	case u.CardID != "":
		return &types.Filter{Where: fmt.Sprintf("%scard_id = ?", prefix), Args: []any{u.CardID}},
			fmt.Sprintf("card ID '%s'", u.CardID), nil
	}
	return nil, "", errNoUserLookup
}

// Users returns one or more users from the database. An optional filter can be
// passed to limit the results.
func Users(ctx context.Context, d types.Querier, filter *types.Filter) (users []*User, rerr error) {
	query := `SELECT u.id, u.created_at, u.updated_at, u.card_id, u.name, u.permission, u.faceprints
		FROM users u %s
		ORDER BY u.name ASC`

	where := "1=1"
	args := []any{}
	if filter != nil {
		where = filter.Where
		args = filter.Args
	}

	query = fmt.Sprintf(query, fmt.Sprintf("WHERE %s", where))

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "users", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing users rows: %w", err)
		}
	}()

	users = make([]*User, 0)
	for rows.Next() {
		var (
			u          User
			permission string
			faceprints sql.NullString
		)
		err = rows.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.CardID, &u.Name,
			&permission, &faceprints)
		if err != nil {
			return nil, types.ScanError{ModelName: "user", Err: err}
		}

		u.Permission, err = access.PermissionFromString(permission)
		if err != nil {
			return nil, types.ScanError{ModelName: "user", Err: err}
		}
		u.Faceprints, err = unmarshalFaceprints(faceprints)
		if err != nil {
			return nil, types.ScanError{ModelName: "user", Err: err}
		}

		users = append(users, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over users rows: %w", err)
	}

	return users, nil
}

func marshalFaceprints(fp *facedev.Faceprints) (sql.NullString, error) {
	if fp == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(fp)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed marshalling faceprints: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalFaceprints(v sql.NullString) (*facedev.Faceprints, error) {
	if !v.Valid || v.String == "" {
		return nil, nil //nolint:nilnil // Absence of faceprints is not an error.
	}
	var fp facedev.Faceprints
	if err := json.Unmarshal([]byte(v.String), &fp); err != nil {
		return nil, fmt.Errorf("failed unmarshalling faceprints: %w", err)
	}
	return &fp, nil
}
