package store

import (
	"fmt"
	"strconv"

	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
)

// CurrentSchemaVersion is the layout version of the persisted
// collections. Bump it and add a migration below when a key format or
// record shape changes.
const CurrentSchemaVersion = 1

const schemaVersionKey = metaPrefix + "schema_version"

// migrations run in order; migrations[n] upgrades version n to n+1.
var migrations = map[int]func(*Store) error{}

// migrate stamps a fresh database with the current schema version and
// runs any pending migrations on an existing one.
func (s *Store) migrate() error {
	version, err := s.SchemaVersion()
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return s.setSchemaVersion(CurrentSchemaVersion)
	}
	if err != nil {
		return err
	}

	if version > CurrentSchemaVersion {
		return apperrors.StoreUnavailable(
			fmt.Sprintf("database schema version %d is newer than supported version %d", version, CurrentSchemaVersion))
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		migration, ok := migrations[v]
		if !ok {
			return apperrors.StoreUnavailable(fmt.Sprintf("no migration from schema version %d", v))
		}
		if s.logger != nil {
			s.logger.Info("migrating database schema", "from", v, "to", v+1)
		}
		if err := migration(s); err != nil {
			return storeErr(fmt.Errorf("migrate schema from %d: %w", v, err))
		}
		if err := s.setSchemaVersion(v + 1); err != nil {
			return err
		}
	}

	return nil
}

// SchemaVersion returns the stored schema version.
func (s *Store) SchemaVersion() (int, error) {
	data, err := s.get([]byte(schemaVersionKey))
	if err != nil {
		return 0, err
	}
	version, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, storeErr(fmt.Errorf("parse schema version %q: %w", data, err))
	}
	return version, nil
}

func (s *Store) setSchemaVersion(version int) error {
	return s.set([]byte(schemaVersionKey), []byte(strconv.Itoa(version)))
}
