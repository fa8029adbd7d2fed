package main

import (
	"context"
	"fmt"
	"log/slog"

	stderrors "errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
	"github.com/Hemantgithubpro/rewear-1/internal/repository"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

type seedUser struct {
	name     string
	email    string
	password string
	role     models.Role
	balance  int32
}

var admin = seedUser{"Admin User", "admin@rewear.com", "admin123", models.RoleAdmin, 1000}

var members = []seedUser{
	{"John Doe", "john@example.com", "password123", models.RoleUser, 150},
	{"Jane Smith", "jane@example.com", "password123", models.RoleUser, 200},
	{"Mike Johnson", "mike@example.com", "password123", models.RoleUser, 75},
}

var sampleItems = []models.Item{
	{
		Title:       "Vintage Denim Jacket",
		Description: "Classic blue denim jacket from the 90s. Excellent condition with minimal wear. Perfect for layering in any season.",
		Category:    models.CategoryOuterwear,
		Type:        "Jacket",
		Size:        models.SizeM,
		Condition:   models.ConditionExcellent,
		Tags:        []string{"vintage", "denim", "classic"},
		Images:      []string{"https://images.unsplash.com/photo-1551028719-00167b16eac5?w=400"},
		PointsValue: 25,
	},
	{
		Title:       "Floral Summer Dress",
		Description: "Beautiful floral print dress perfect for summer occasions. Lightweight and comfortable fabric.",
		Category:    models.CategoryDresses,
		Type:        "Midi Dress",
		Size:        models.SizeS,
		Condition:   models.ConditionGood,
		Tags:        []string{"floral", "summer", "midi"},
		Images:      []string{"https://images.unsplash.com/photo-1515372039744-b8f02a3ae446?w=400"},
		PointsValue: 20,
	},
	{
		Title:       "Leather Ankle Boots",
		Description: "High-quality leather ankle boots in black. Comfortable and stylish for both casual and formal wear.",
		Category:    models.CategoryShoes,
		Type:        "Boots",
		Size:        models.SizeL,
		Condition:   models.ConditionExcellent,
		Tags:        []string{"leather", "boots", "black"},
		Images:      []string{"https://images.unsplash.com/photo-1543163521-1bf539c55dd2?w=400"},
		PointsValue: 30,
	},
	{
		Title:       "Cozy Wool Sweater",
		Description: "Warm and cozy wool sweater in cream color. Perfect for cold weather and very comfortable.",
		Category:    models.CategoryTops,
		Type:        "Sweater",
		Size:        models.SizeM,
		Condition:   models.ConditionGood,
		Tags:        []string{"wool", "sweater", "cozy"},
		Images:      []string{"https://images.unsplash.com/photo-1434389677669-e08b4cac3105?w=400"},
		PointsValue: 18,
	},
	{
		Title:       "High-Waisted Jeans",
		Description: "Trendy high-waisted jeans in dark wash. Great fit and very comfortable for everyday wear.",
		Category:    models.CategoryBottoms,
		Type:        "Jeans",
		Size:        models.SizeM,
		Condition:   models.ConditionExcellent,
		Tags:        []string{"jeans", "high-waisted", "dark-wash"},
		Images:      []string{"https://images.unsplash.com/photo-1541099649105-f69ad21f3246?w=400"},
		PointsValue: 22,
	},
}

type seeder struct {
	txManager repository.TxManager
	users     repository.UserRepository
	items     repository.ItemRepository
	cost      int
}

// Seed loads the demo accounts and catalog. Accounts are matched by email, and
// items are only created for members created by this run, so reruns are no-ops.
func (s *seeder) Seed(ctx context.Context) error {
	return s.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if _, _, err := s.ensureUser(ctx, admin); err != nil {
			return err
		}

		owners := make([]*models.User, len(members))
		fresh := make([]bool, len(members))
		for i, m := range members {
			user, created, err := s.ensureUser(ctx, m)
			if err != nil {
				return err
			}
			owners[i], fresh[i] = user, created
		}

		for i := range sampleItems {
			slot := i % len(owners)
			if !fresh[slot] {
				continue
			}
			item := sampleItems[i]
			item.OwnerID = owners[slot].ID
			item.IsApproved = true
			item.Available = true
			if err := s.items.Create(ctx, &item); err != nil {
				return fmt.Errorf("failed to seed item %q: %w", item.Title, err)
			}
		}
		return nil
	})
}

func (s *seeder) ensureUser(ctx context.Context, u seedUser) (*models.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, u.email)
	switch {
	case err == nil:
		slog.Info("user already seeded", "email", u.email)
		return existing, false, nil
	case !stderrors.Is(err, pkgerrors.ErrUserNotFound):
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.password), s.cost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Name:          u.name,
		Email:         u.email,
		PasswordHash:  string(hash),
		Role:          u.role,
		PointsBalance: u.balance,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
