package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"localguide/config"
	"localguide/infras/postgres"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionDrop   = "drop"
	ActionStepUp = "step-up"

	migrationSource = "file://migrations/postgres"
)

var ErrUnknownAction = errors.New("unknown migration action")

func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	write := config.DB.Postgres.Write

	connectionString := postgres.DSN(
		write.Username,
		write.Password,
		write.Host,
		write.Port,
		getDBName(config, write.Name),
		write.SSLMode,
	)

	if table := config.DB.Postgres.MigrationTable; table != "" {
		connectionString += "&x-migrations-table=" + url.QueryEscape(table)
	}

	mig, err := migrate.New(migrationSource, connectionString)
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func Runner(config *config.Config, action string) error {
	mig, err := getConnection(config)
	if err != nil {
		return err
	}

	defer mig.Close()

	switch action {
	case ActionUp:
		err = mig.Up()
	case ActionDown:
		err = mig.Steps(-1)
	case ActionStepUp:
		err = mig.Steps(1)
	case ActionDrop:
		err = mig.Down()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migration: %w", action, err)
	}

	version, dirty, _ := mig.Version()
	log.Info().Str("action", action).Uint("version", version).Bool("dirty", dirty).Msg("Database migration finished")

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, ActionUp)
}

func StepUp(config *config.Config) error {
	return Runner(config, ActionStepUp)
}

func Down(config *config.Config) error {
	return Runner(config, ActionDown)
}

func Drop(config *config.Config) error {
	return Runner(config, ActionDrop)
}
