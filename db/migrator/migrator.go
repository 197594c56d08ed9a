package migrator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strconv"

	"go.faceguard.dev/faceguard/db/types"
)

// Direction is the direction migrations are run in.
type Direction string

// Migration directions.
const (
	MigrationUp   Direction = "up"
	MigrationDown Direction = "down"
)

// Migration is a single schema migration with its forward and rollback SQL.
type Migration struct {
	ID   int
	Name string
	Up   string
	Down string
}

var migrationFileRx = regexp.MustCompile(`^(\d+)-([\w-]+)\.(up|down)\.sql$`)

// LoadMigrations reads migration files from the given filesystem. Files are
// named '{id}-{name}.{up|down}.sql'; both directions must exist for every
// migration.
func LoadMigrations(fsys fs.FS) ([]*Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed reading migrations directory: %w", err)
	}

	byID := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := migrationFileRx.FindStringSubmatch(entry.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration file name '%s'", entry.Name())
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration ID in '%s': %w", entry.Name(), err)
		}

		sqlData, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed reading migration file '%s': %w", entry.Name(), err)
		}

		mig, ok := byID[id]
		if !ok {
			mig = &Migration{ID: id, Name: m[2]}
			byID[id] = mig
		}
		switch Direction(m[3]) {
		case MigrationUp:
			mig.Up = string(sqlData)
		case MigrationDown:
			mig.Down = string(sqlData)
		}
	}

	migrations := make([]*Migration, 0, len(byID))
	for _, mig := range byID {
		if mig.Up == "" || mig.Down == "" {
			return nil, fmt.Errorf("migration %d-%s is missing an up or down file", mig.ID, mig.Name)
		}
		migrations = append(migrations, mig)
	}
	slices.SortFunc(migrations, func(a, b *Migration) int { return a.ID - b.ID })

	return migrations, nil
}

// RunMigrations runs the given migrations in the given direction, up to and
// including the target migration ID, or all of them if target is "all".
// Migration history is tracked in the _migrations table.
func RunMigrations(
	d types.Querier, migrations []*Migration, direction Direction, target string,
	logger *slog.Logger,
) error {
	ctx := d.NewContext()
	if err := ensureHistoryTable(d); err != nil {
		return err
	}

	applied, err := appliedIDs(d)
	if err != nil {
		return err
	}

	targetID, err := parseTarget(target, migrations)
	if err != nil {
		return err
	}

	plan := slices.Clone(migrations)
	if direction == MigrationDown {
		slices.Reverse(plan)
	}

	for _, mig := range plan {
		mlogger := logger.With("migration", fmt.Sprintf("%d-%s", mig.ID, mig.Name), "direction", direction)

		var stmt string
		switch direction {
		case MigrationUp:
			if mig.ID > targetID || applied[mig.ID] {
				continue
			}
			stmt = mig.Up
		case MigrationDown:
			if mig.ID < targetID || !applied[mig.ID] {
				continue
			}
			stmt = mig.Down
		default:
			return fmt.Errorf("invalid migration direction '%s'", direction)
		}

		if _, err = d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed running migration %d-%s %s: %w", mig.ID, mig.Name, direction, err)
		}

		if direction == MigrationUp {
			_, err = d.ExecContext(ctx,
				`INSERT INTO _migrations (id, name, applied_at) VALUES (?, ?, ?)`,
				mig.ID, mig.Name, d.TimeNow().UTC())
		} else {
			_, err = d.ExecContext(ctx, `DELETE FROM _migrations WHERE id = ?`, mig.ID)
		}
		if err != nil {
			return fmt.Errorf("failed recording migration %d-%s: %w", mig.ID, mig.Name, err)
		}

		mlogger.Debug("migration applied")
	}

	return nil
}

func ensureHistoryTable(d types.Querier) error {
	_, err := d.ExecContext(d.NewContext(), `
		CREATE TABLE IF NOT EXISTS _migrations (
			id         INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed creating migration history table: %w", err)
	}
	return nil
}

func appliedIDs(d types.Querier) (map[int]bool, error) {
	rows, err := d.QueryContext(d.NewContext(), `SELECT id FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed reading migration history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed scanning migration history: %w", err)
		}
		applied[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over migration history: %w", err)
	}

	return applied, nil
}

func parseTarget(target string, migrations []*Migration) (int, error) {
	if target == "all" {
		maxID := 0
		for _, mig := range migrations {
			maxID = max(maxID, mig.ID)
		}
		return maxID, nil
	}

	id, err := strconv.Atoi(target)
	if err != nil {
		return 0, errors.New("migration target must be a migration ID or 'all'")
	}
	return id, nil
}
