package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
	"github.com/yarff/flashing-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "flashing", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

// Models lists every persisted model in dependency order. Shared with the test
// harness so in-memory sqlite databases migrate the same schema.
func Models() []interface{} {
	return []interface{}{
		&types.Factory{},
		&types.Client{},
		&types.Material{},
		&types.MaterialGroup{},
		&types.MaterialVariant{},
		&types.DeliveryMethod{},
		&types.JobReference{},
		&types.Address{},
		&types.JobReferenceDraft{},
		&types.StoredFlashing{},
		&types.Specification{},
		&types.Cart{},
		&types.Order{},
		&types.PaymentSnapshot{},
		&types.JobReferenceSnapshot{},
		&types.StoredFlashingSnapshot{},
		&types.MaterialSnapshot{},
		&types.SpecificationSnapshot{},
		&types.DeliveryInfoSnapshot{},
		&types.PickupInfoSnapshot{},
	}
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(Models()...); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
