package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

// File is the YAML catalog bootstrap: one factory with its materials and
// delivery methods. Applied only when the factory table is empty, so restarts
// never clobber a live catalog.
type File struct {
	Factory         Factory          `yaml:"factory"`
	Materials       []Material       `yaml:"materials"`
	DeliveryMethods []DeliveryMethod `yaml:"delivery_methods"`
}

type Factory struct {
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	Description string `yaml:"description"`

	StreetAddress string `yaml:"street_address"`
	Suburb        string `yaml:"suburb"`
	State         string `yaml:"state"`
	Postcode      int    `yaml:"postcode"`

	WorkingHoursStart string  `yaml:"working_hours_start"`
	WorkingHoursEnd   string  `yaml:"working_hours_end"`
	GSTRatio          float64 `yaml:"gst_ratio"`
}

type Material struct {
	Name        string  `yaml:"name"`
	VariantType string  `yaml:"variant_type"`
	Groups      []Group `yaml:"groups"`
}

type Group struct {
	Name string `yaml:"name"`

	BasePrice          float64 `yaml:"base_price"`
	PricePerFold       float64 `yaml:"price_per_fold"`
	PricePer100Girth   float64 `yaml:"price_per_100girth"`
	PricePerCrushFold  float64 `yaml:"price_per_crush_fold"`
	SampleWeight       float64 `yaml:"sample_weight"`
	SampleWeightPerSqm float64 `yaml:"sample_weight_per_sqm"`

	Variants []Variant `yaml:"variants"`
}

type Variant struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type DeliveryMethod struct {
	MethodType  string `yaml:"method_type"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Priority    int    `yaml:"priority"`

	BaseCost  float64 `yaml:"base_cost"`
	CostPerKG float64 `yaml:"cost_per_kg"`
	CostPerKM float64 `yaml:"cost_per_km"`

	MaxWeightKG   float64 `yaml:"max_weight_kg"`
	MaxDistanceKM int     `yaml:"max_distance_km"`
	ExtraDays     int     `yaml:"extra_days"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply inserts the seed catalog if no factory exists yet.
func Apply(ctx context.Context, db *gorm.DB, log *logger.Logger, path string) error {
	seedLog := log.With("component", "seed")

	var count int64
	if err := db.WithContext(ctx).Model(&types.Factory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		seedLog.Debug("Catalog already present, skipping seed")
		return nil
	}

	f, err := Load(path)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		factory := &types.Factory{
			Name:              f.Factory.Name,
			Email:             f.Factory.Email,
			Phone:             f.Factory.Phone,
			Description:       f.Factory.Description,
			StreetAddress:     f.Factory.StreetAddress,
			Suburb:            f.Factory.Suburb,
			State:             f.Factory.State,
			Postcode:          f.Factory.Postcode,
			WorkingHoursStart: f.Factory.WorkingHoursStart,
			WorkingHoursEnd:   f.Factory.WorkingHoursEnd,
			GSTRatio:          f.Factory.GSTRatio,
			IsActive:          true,
		}
		if err := tx.Create(factory).Error; err != nil {
			return fmt.Errorf("seed factory: %w", err)
		}

		for _, m := range f.Materials {
			material := &types.Material{
				FactoryID:   factory.ID,
				Name:        m.Name,
				VariantType: m.VariantType,
			}
			for _, g := range m.Groups {
				group := types.MaterialGroup{
					Name:               g.Name,
					BasePrice:          g.BasePrice,
					PricePerFold:       g.PricePerFold,
					PricePer100Girth:   g.PricePer100Girth,
					PricePerCrushFold:  g.PricePerCrushFold,
					SampleWeight:       g.SampleWeight,
					SampleWeightPerSqm: g.SampleWeightPerSqm,
				}
				for _, v := range g.Variants {
					group.Variants = append(group.Variants, types.MaterialVariant{
						Label: v.Label,
						Value: v.Value,
					})
				}
				material.Groups = append(material.Groups, group)
			}
			if err := tx.Create(material).Error; err != nil {
				return fmt.Errorf("seed material %q: %w", m.Name, err)
			}
		}

		for _, dm := range f.DeliveryMethods {
			method := &types.DeliveryMethod{
				FactoryID:     factory.ID,
				MethodType:    dm.MethodType,
				Name:          dm.Name,
				Description:   dm.Description,
				Priority:      dm.Priority,
				BaseCost:      dm.BaseCost,
				CostPerKG:     dm.CostPerKG,
				CostPerKM:     dm.CostPerKM,
				MaxWeightKG:   dm.MaxWeightKG,
				MaxDistanceKM: dm.MaxDistanceKM,
				ExtraDays:     dm.ExtraDays,
				IsActive:      true,
			}
			if err := tx.Create(method).Error; err != nil {
				return fmt.Errorf("seed delivery method %q: %w", dm.Name, err)
			}
		}

		seedLog.Info("Seed catalog applied",
			"factory", factory.Name,
			"materials", len(f.Materials),
			"delivery_methods", len(f.DeliveryMethods))
		return nil
	})
}
