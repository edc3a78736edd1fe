// server/internal/database/seeder.go
package database

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sppg-kitchen-api-server/internal/access"
	"sppg-kitchen-api-server/internal/auth"
	"sppg-kitchen-api-server/internal/models"
	"sppg-kitchen-api-server/internal/store"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the reference data a fresh kitchen starts with.
type Seed struct {
	Admin struct {
		Username string `yaml:"username"`
		FullName string `yaml:"fullName"`
	} `yaml:"admin"`
	Destinations []models.Destination `yaml:"destinations"`
	Stock        []models.StockItem   `yaml:"stock"`
}

// LoadSeed reads the seed file at path, or the built-in one when path is empty.
func LoadSeed(path string) (Seed, error) {
	data := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Seed{}, fmt.Errorf("seed: read %s: %w", path, err)
		}
		data = b
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("seed: parse: %w", err)
	}
	if s.Admin.Username == "" {
		return Seed{}, errors.New("seed: admin.username is required")
	}
	return s, nil
}

// SeedMasterAdmin creates the built-in administrator if it is missing. With
// no password configured a random one is generated and logged once.
func SeedMasterAdmin(ctx context.Context, users *store.Repository[models.User], seed Seed, password string, log *zap.Logger) error {
	if _, err := users.Get(models.MasterAdminID); err == nil {
		log.Info("master admin already exists, seeding skipped")
		return nil
	}

	generated := false
	if password == "" {
		buf := make([]byte, 12)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("seed: generate password: %w", err)
		}
		password = base64.RawURLEncoding.EncodeToString(buf)
		generated = true
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	admin := models.User{
		ID:          models.MasterAdminID,
		Username:    seed.Admin.Username,
		Password:    hash,
		FullName:    seed.Admin.FullName,
		Role:        models.RoleAdmin,
		Permissions: access.Effective(models.RoleAdmin, nil),
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}
	if generated {
		log.Warn("master admin seeded with a generated password; change it after first login",
			zap.String("username", admin.Username), zap.String("password", password))
	} else {
		log.Info("master admin seeded", zap.String("username", admin.Username))
	}
	return nil
}

// SeedStock fills an empty stock collection with the seed inventory.
func SeedStock(ctx context.Context, stock *store.Repository[models.StockItem], seed Seed, now time.Time, newID func() string, log *zap.Logger) error {
	if stock.Len() > 0 {
		log.Info("stock already present, seeding skipped", zap.Int("items", stock.Len()))
		return nil
	}
	items := make([]models.StockItem, len(seed.Stock))
	for i, it := range seed.Stock {
		if it.ID == "" {
			it.ID = newID()
		}
		it.LastUpdated = now
		items[i] = it
	}
	if err := stock.Create(ctx, items...); err != nil {
		return fmt.Errorf("seed: create stock: %w", err)
	}
	log.Info("stock seeded", zap.Int("items", len(items)))
	return nil
}
