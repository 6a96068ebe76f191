package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/clients/geocode"
	"github.com/yarff/flashing-backend/internal/delivery"
	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/types"
)

var (
	ErrBadState        = fmt.Errorf("state is not an australian state code")
	ErrDraftIncomplete = fmt.Errorf("job reference draft is missing required fields")
)

// AddressInput is a complete delivery address as submitted by the client.
type AddressInput struct {
	Title         string `json:"title" binding:"required"`
	StreetAddress string `json:"street_address" binding:"required"`
	Suburb        string `json:"suburb" binding:"required"`
	State         string `json:"state" binding:"required"`
	Postcode      int    `json:"postcode" binding:"required"`

	RecipientName  string `json:"recipient_name" binding:"required"`
	RecipientPhone string `json:"recipient_phone" binding:"required"`
}

// DraftInput updates the per-client job reference draft; only non-nil fields
// are written.
type DraftInput struct {
	Code        *int    `json:"code"`
	ProjectName *string `json:"project_name"`

	Title         *string `json:"title"`
	StreetAddress *string `json:"street_address"`
	Suburb        *string `json:"suburb"`
	State         *string `json:"state"`
	Postcode      *int    `json:"postcode"`

	RecipientName  *string `json:"recipient_name"`
	RecipientPhone *string `json:"recipient_phone"`
}

type AddressService interface {
	ListJobReferences(ctx context.Context, clientID uuid.UUID) ([]*types.JobReference, error)
	DeleteJobReference(ctx context.Context, clientID, refID uuid.UUID) error

	AddAddress(ctx context.Context, clientID, refID uuid.UUID, input AddressInput) (*types.Address, error)

	// BestDeliveryMethod resolves which method would carry a shipment of the
	// given weight to this address right now.
	BestDeliveryMethod(ctx context.Context, clientID, addressID uuid.UUID, weightKG float64) (*types.DeliveryMethod, error)

	GetDraft(ctx context.Context, clientID uuid.UUID) (*types.JobReferenceDraft, error)
	UpdateDraft(ctx context.Context, clientID uuid.UUID, input DraftInput) (*types.JobReferenceDraft, error)

	// CommitDraft turns a completed draft into a job reference with its first
	// address, then clears the draft.
	CommitDraft(ctx context.Context, clientID uuid.UUID) (*types.JobReference, error)
}

type addressService struct {
	db          *gorm.DB
	log         *logger.Logger
	jobRefRepo  repos.JobReferenceRepo
	clientRepo  repos.ClientRepo
	factoryRepo repos.FactoryRepo
	methodRepo  repos.DeliveryMethodRepo
	geocoder    geocode.Client

	// Distance enrichment runs after commit; tests override this to run inline.
	enrichAsync bool
}

func NewAddressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobRefRepo repos.JobReferenceRepo,
	clientRepo repos.ClientRepo,
	factoryRepo repos.FactoryRepo,
	methodRepo repos.DeliveryMethodRepo,
	geocoder geocode.Client,
) AddressService {
	serviceLog := baseLog.With("service", "AddressService")
	return &addressService{
		db:          db,
		log:         serviceLog,
		jobRefRepo:  jobRefRepo,
		clientRepo:  clientRepo,
		factoryRepo: factoryRepo,
		methodRepo:  methodRepo,
		geocoder:    geocoder,
		enrichAsync: true,
	}
}

func (as *addressService) BestDeliveryMethod(ctx context.Context, clientID, addressID uuid.UUID, weightKG float64) (*types.DeliveryMethod, error) {
	addr, err := as.jobRefRepo.GetAddressByID(ctx, nil, addressID)
	if err != nil {
		return nil, err
	}
	ref, err := as.jobRefRepo.GetByID(ctx, nil, addr.JobReferenceID)
	if err != nil {
		return nil, err
	}
	if ref.ClientID != clientID {
		return nil, ErrNotOwner
	}
	if addr.DistanceToFactoryKM == nil {
		return nil, ErrUnknownDistance
	}

	client, err := as.clientRepo.GetByID(ctx, nil, clientID)
	if err != nil {
		return nil, err
	}
	methods, err := as.methodRepo.ListActiveByFactory(ctx, nil, client.FactoryID)
	if err != nil {
		return nil, err
	}
	return delivery.Select(methods, float64(*addr.DistanceToFactoryKM), weightKG)
}

func (as *addressService) ListJobReferences(ctx context.Context, clientID uuid.UUID) ([]*types.JobReference, error) {
	return as.jobRefRepo.ListByClient(ctx, nil, clientID)
}

func (as *addressService) DeleteJobReference(ctx context.Context, clientID, refID uuid.UUID) error {
	ref, err := as.jobRefRepo.GetByID(ctx, nil, refID)
	if err != nil {
		return err
	}
	if ref.ClientID != clientID {
		return ErrNotOwner
	}
	return as.jobRefRepo.Delete(ctx, nil, refID)
}

func (as *addressService) AddAddress(ctx context.Context, clientID, refID uuid.UUID, input AddressInput) (*types.Address, error) {
	if !types.IsAustralianState(input.State) {
		return nil, ErrBadState
	}

	ref, err := as.jobRefRepo.GetByID(ctx, nil, refID)
	if err != nil {
		return nil, err
	}
	if ref.ClientID != clientID {
		return nil, ErrNotOwner
	}

	addr := &types.Address{
		JobReferenceID: ref.ID,
		Title:          input.Title,
		StreetAddress:  input.StreetAddress,
		Suburb:         input.Suburb,
		State:          input.State,
		Postcode:       input.Postcode,
		RecipientName:  input.RecipientName,
		RecipientPhone: input.RecipientPhone,
	}
	if _, err := as.jobRefRepo.CreateAddress(ctx, nil, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	as.enrichDistance(clientID, addr)
	return addr, nil
}

func (as *addressService) GetDraft(ctx context.Context, clientID uuid.UUID) (*types.JobReferenceDraft, error) {
	draft, err := as.jobRefRepo.GetDraftByClient(ctx, nil, clientID)
	if err == nil {
		return draft, nil
	}
	draft = &types.JobReferenceDraft{ClientID: clientID}
	if _, err := as.jobRefRepo.SaveDraft(ctx, nil, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (as *addressService) UpdateDraft(ctx context.Context, clientID uuid.UUID, input DraftInput) (*types.JobReferenceDraft, error) {
	if input.State != nil && !types.IsAustralianState(*input.State) {
		return nil, ErrBadState
	}

	draft, err := as.GetDraft(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		draft.Code = input.Code
	}
	if input.ProjectName != nil {
		draft.ProjectName = input.ProjectName
	}
	if input.Title != nil {
		draft.Title = input.Title
	}
	if input.StreetAddress != nil {
		draft.StreetAddress = input.StreetAddress
	}
	if input.Suburb != nil {
		draft.Suburb = input.Suburb
	}
	if input.State != nil {
		draft.State = input.State
	}
	if input.Postcode != nil {
		draft.Postcode = input.Postcode
	}
	if input.RecipientName != nil {
		draft.RecipientName = input.RecipientName
	}
	if input.RecipientPhone != nil {
		draft.RecipientPhone = input.RecipientPhone
	}

	if _, err := as.jobRefRepo.SaveDraft(ctx, nil, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

func (as *addressService) CommitDraft(ctx context.Context, clientID uuid.UUID) (*types.JobReference, error) {
	draft, err := as.jobRefRepo.GetDraftByClient(ctx, nil, clientID)
	if err != nil {
		return nil, err
	}
	if draft.Code == nil || draft.ProjectName == nil ||
		draft.Title == nil || draft.StreetAddress == nil || draft.Suburb == nil ||
		draft.State == nil || draft.Postcode == nil ||
		draft.RecipientName == nil || draft.RecipientPhone == nil {
		return nil, ErrDraftIncomplete
	}

	var ref *types.JobReference
	var addr *types.Address
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ref = &types.JobReference{
			ClientID:    clientID,
			Code:        *draft.Code,
			ProjectName: *draft.ProjectName,
		}
		if _, err := as.jobRefRepo.Create(ctx, tx, ref); err != nil {
			return fmt.Errorf("create job reference: %w", err)
		}

		addr = &types.Address{
			JobReferenceID: ref.ID,
			Title:          *draft.Title,
			StreetAddress:  *draft.StreetAddress,
			Suburb:         *draft.Suburb,
			State:          *draft.State,
			Postcode:       *draft.Postcode,
			RecipientName:  *draft.RecipientName,
			RecipientPhone: *draft.RecipientPhone,
		}
		if _, err := as.jobRefRepo.CreateAddress(ctx, tx, addr); err != nil {
			return fmt.Errorf("create address: %w", err)
		}

		return as.jobRefRepo.DeleteDraft(ctx, tx, clientID)
	})
	if err != nil {
		return nil, err
	}

	as.enrichDistance(clientID, addr)

	ref.Addresses = []types.Address{*addr}
	return ref, nil
}

// enrichDistance resolves the driving distance from the client's factory and
// writes it back. Fire and forget: a failed lookup leaves the distance nil and
// the cart surfaces that before checkout.
func (as *addressService) enrichDistance(clientID uuid.UUID, addr *types.Address) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := as.clientRepo.GetByID(ctx, nil, clientID)
		if err != nil {
			as.log.Error("Distance enrichment: load client failed", "address_id", addr.ID, "error", err)
			return
		}
		factory, err := as.factoryRepo.GetByID(ctx, nil, client.FactoryID)
		if err != nil {
			as.log.Error("Distance enrichment: load factory failed", "address_id", addr.ID, "error", err)
			return
		}

		km, err := as.geocoder.DistanceKM(ctx, factory.FullAddress(), addr.FullAddress())
		if err != nil {
			as.log.Warn("Distance enrichment failed", "address_id", addr.ID, "error", err)
			return
		}
		if err := as.jobRefRepo.UpdateAddressDistance(ctx, nil, addr.ID, km); err != nil {
			as.log.Error("Distance enrichment: write failed", "address_id", addr.ID, "error", err)
			return
		}
		as.log.Info("Address distance resolved", "address_id", addr.ID, "distance_km", km)
	}

	if as.enrichAsync {
		go run()
		return
	}
	run()
}
