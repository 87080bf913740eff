package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/models"
	"github.com/lnwboom/office-assets/repository"
	"github.com/lnwboom/office-assets/utils"
)

const (
	adminUsername       = "admin"
	generatedPasswordLen = 20
)

type sampleAsset struct {
	code, name, typ, description string
	status                       models.AssetStatus
	purchased                    string
}

var sampleAssets = []sampleAsset{
	{"LT001", "Dell Laptop XPS 13", "Laptop", "High-end developer laptop", models.AssetInUse, "2023-01-15"},
	{"LT002", "MacBook Pro 14\"", "Laptop", "Design team laptop with M2 chip", models.AssetInUse, "2023-03-01"},
	{"LT003", "Lenovo ThinkPad X1", "Laptop", "Business laptop for management", models.AssetMaintenance, "2022-11-15"},
	{"MON001", "Dell 27\" Monitor", "Monitor", "4K Monitor for design team", models.AssetAvailable, "2023-02-20"},
	{"MON002", "LG 32\" UltraFine", "Monitor", "5K Monitor for video editing", models.AssetInUse, "2023-04-15"},
	{"KB001", "Logitech MX Keys", "Keyboard", "Wireless mechanical keyboard", models.AssetBroken, "2023-03-10"},
	{"KB002", "Keychron K2", "Keyboard", "Mechanical keyboard with brown switches", models.AssetInUse, "2023-05-01"},
	{"MS001", "Logitech MX Master 3", "Mouse", "Wireless ergonomic mouse", models.AssetInUse, "2023-02-15"},
	{"PR001", "HP LaserJet Pro", "Printer", "Color laser printer", models.AssetInUse, "2023-01-20"},
	{"CAM001", "Logitech Brio", "Webcam", "4K webcam for video conferencing", models.AssetAvailable, "2023-06-01"},
}

type seeder struct {
	users         repository.UserRepository
	assets        repository.AssetRepository
	adminPassword string
	log           *zap.Logger
	now           func() time.Time
}

type seedResult struct {
	AdminCreated      bool
	GeneratedPassword string
	AssetsCreated     int
}

// Run is idempotent: the admin is created only if missing and the sample
// assets only into an empty collection.
func (s *seeder) Run(ctx context.Context) (*seedResult, error) {
	res := &seedResult{}
	if err := s.ensureAdmin(ctx, res); err != nil {
		return nil, err
	}
	if err := s.ensureAssets(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *seeder) ensureAdmin(ctx context.Context, res *seedResult) error {
	_, err := s.users.FindByUsername(ctx, adminUsername)
	if err == nil {
		s.log.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	password := s.adminPassword
	if password == "" {
		if password, err = utils.GenerateRandomPassword(generatedPasswordLen); err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		res.GeneratedPassword = password
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := s.now().UTC()
	admin := &models.User{
		Username:     adminUsername,
		PasswordHash: hash,
		Email:        "admin@example.com",
		FullName:     "System Administrator",
		Department:   "IT",
		Role:         models.RoleAdmin,
		Status:       models.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	res.AdminCreated = true
	s.log.Info("admin user created", zap.String("username", admin.Username))
	return nil
}

func (s *seeder) ensureAssets(ctx context.Context, res *seedResult) error {
	counts, err := s.assets.CountByStatus(ctx)
	if err != nil {
		return fmt.Errorf("count assets: %w", err)
	}
	existing := 0
	for _, n := range counts {
		existing += n
	}
	if existing > 0 {
		s.log.Info("assets already exist", zap.Int("count", existing))
		return nil
	}

	now := s.now().UTC()
	for _, sa := range sampleAssets {
		purchased, err := utils.ParseDate(sa.purchased)
		if err != nil {
			return fmt.Errorf("sample asset %s: %w", sa.code, err)
		}
		asset := &models.Asset{
			Code:         sa.code,
			Name:         sa.name,
			Type:         sa.typ,
			Status:       sa.status,
			Description:  sa.description,
			PurchaseDate: purchased,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.assets.Create(ctx, asset); err != nil {
			return fmt.Errorf("create asset %s: %w", sa.code, err)
		}
		res.AssetsCreated++
	}
	s.log.Info("sample assets created", zap.Int("count", res.AssetsCreated))
	return nil
}
