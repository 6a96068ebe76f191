package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/types"
)

type CatalogService interface {
	GetFactory(ctx context.Context, factoryID uuid.UUID) (*types.Factory, error)
	ListMaterials(ctx context.Context, factoryID uuid.UUID) ([]*types.Material, error)
	ListDeliveryMethods(ctx context.Context, factoryID uuid.UUID) ([]*types.DeliveryMethod, error)
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	factoryRepo  repos.FactoryRepo
	materialRepo repos.MaterialRepo
	methodRepo   repos.DeliveryMethodRepo
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	factoryRepo repos.FactoryRepo,
	materialRepo repos.MaterialRepo,
	methodRepo repos.DeliveryMethodRepo,
) CatalogService {
	serviceLog := baseLog.With("service", "CatalogService")
	return &catalogService{
		db:           db,
		log:          serviceLog,
		factoryRepo:  factoryRepo,
		materialRepo: materialRepo,
		methodRepo:   methodRepo,
	}
}

func (cs *catalogService) GetFactory(ctx context.Context, factoryID uuid.UUID) (*types.Factory, error) {
	return cs.factoryRepo.GetByID(ctx, nil, factoryID)
}

func (cs *catalogService) ListMaterials(ctx context.Context, factoryID uuid.UUID) ([]*types.Material, error) {
	return cs.materialRepo.ListByFactory(ctx, nil, factoryID)
}

func (cs *catalogService) ListDeliveryMethods(ctx context.Context, factoryID uuid.UUID) ([]*types.DeliveryMethod, error) {
	return cs.methodRepo.ListActiveByFactory(ctx, nil, factoryID)
}
