package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/partyhoard/backend/internal/auth"
	"github.com/partyhoard/backend/internal/config"
	"github.com/partyhoard/backend/internal/models"
	"github.com/partyhoard/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type InventoryService struct {
	inventoryRepo *repositories.InventoryRepo
	cfg           *config.Config
	log           *zap.Logger
}

func NewInventoryService(inventoryRepo *repositories.InventoryRepo, cfg *config.Config, log *zap.Logger) *InventoryService {
	return &InventoryService{inventoryRepo: inventoryRepo, cfg: cfg, log: log}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a party name into a URL-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func randomSuffix() string {
	b := make([]byte, 2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (s *InventoryService) Create(ctx context.Context, name, passphrase string, description, customSlug *string) (*models.Inventory, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(passphrase) < 6 {
		return nil, fmt.Errorf("%w: passphrase must be at least 6 characters", ErrInvalidInput)
	}

	base := name
	if customSlug != nil && *customSlug != "" {
		base = *customSlug
	}
	slug := Slugify(base)
	if slug == "" {
		slug = "party"
	}

	exists, err := s.inventoryRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		slug = slug + "-" + randomSuffix()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	inv := &models.Inventory{
		Slug:           slug,
		Name:           name,
		Description:    description,
		PassphraseHash: string(hash),
	}
	if err := s.inventoryRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Info("inventory created", zap.String("slug", inv.Slug))
	return inv, nil
}

// Authenticate checks the passphrase and, on success, issues a session token
// scoped to this inventory.
func (s *InventoryService) Authenticate(ctx context.Context, slug, passphrase string) (*models.Inventory, string, error) {
	inv, err := s.inventoryRepo.GetBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: inventory %q", ErrNotFound, slug)
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(inv.PassphraseHash), []byte(passphrase)) != nil {
		return nil, "", fmt.Errorf("%w: invalid passphrase", ErrUnauthorized)
	}

	token, err := auth.GenerateToken(s.cfg.JWTSecret, inv.ID, inv.Slug, s.cfg.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return inv, token, nil
}

// Authorize resolves a slug plus either a raw passphrase or a bearer token to
// the inventory it protects. This is the credential check every protected
// route goes through.
func (s *InventoryService) Authorize(ctx context.Context, slug, passphrase, token string) (*models.Inventory, error) {
	inv, err := s.inventoryRepo.GetBySlug(ctx, slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: inventory %q", ErrNotFound, slug)
	}
	if err != nil {
		return nil, err
	}

	if token != "" {
		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err == nil && claims.InventoryID == inv.ID {
			return inv, nil
		}
	}
	if passphrase != "" {
		if bcrypt.CompareHashAndPassword([]byte(inv.PassphraseHash), []byte(passphrase)) == nil {
			return inv, nil
		}
	}
	return nil, fmt.Errorf("%w: passphrase or token required", ErrUnauthorized)
}

func (s *InventoryService) UpdateDetails(ctx context.Context, inv *models.Inventory, name string, description *string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.inventoryRepo.UpdateDetails(ctx, inv.ID, name, description)
}
