package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/livingroomcafe/api/internal/auth"
	"github.com/livingroomcafe/api/internal/config"
	"github.com/livingroomcafe/api/internal/database"
	"github.com/livingroomcafe/api/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedItem struct {
	name        string
	description string
	price       string
	isVeg       bool
}

type seedCategory struct {
	name  string
	icon  string
	items []seedItem
}

// starterMenu is loaded into an empty database.
var starterMenu = []seedCategory{
	{name: "Pizza", icon: "🍕", items: []seedItem{
		{"Margherita", "Tomato, mozzarella and basil", "249", true},
		{"Farmhouse", "Capsicum, onion, mushroom and corn", "299", true},
		{"Chicken Tikka", "Tandoori chicken with onion and capsicum", "349", false},
	}},
	{name: "Pasta", icon: "🍝", items: []seedItem{
		{"Penne Arrabbiata", "Spicy tomato sauce", "279", true},
		{"Chicken Alfredo", "Creamy white sauce", "329", false},
	}},
	{name: "Burgers", icon: "🍔", items: []seedItem{
		{"Classic Veg Burger", "Crispy patty, lettuce and mayo", "179", true},
		{"Grilled Chicken Burger", "Grilled breast with peri peri mayo", "229", false},
	}},
	{name: "Beverages", icon: "☕", items: []seedItem{
		{"Cold Coffee", "Blended with ice cream", "149", true},
		{"Masala Chai", "", "59", true},
		{"Fresh Lime Soda", "Sweet or salted", "89", true},
	}},
}

func main() {
	hashOnly := flag.String("hash-password", "", "print a bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashOnly != "" {
		hash, err := auth.HashPassword(*hashOnly)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg := config.Load()
	log, err := logger.New(true, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := seed(context.Background(), cfg.DatabaseURL, log); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}

func seed(ctx context.Context, dbURL string, log *zap.Logger) error {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Info("connected to database")

	// Seed in a transaction: the whole menu or nothing
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := database.New(pool).WithTx(tx)

	existing, err := q.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		log.Info("menu already has categories, skipping", zap.Int("categories", len(existing)))
		return nil
	}

	var items int
	for i, c := range starterMenu {
		cat, err := q.CreateCategory(ctx, database.CreateCategoryParams{
			Name:         c.name,
			Icon:         pgtype.Text{String: c.icon, Valid: c.icon != ""},
			DisplayOrder: int32(i + 1),
		})
		if err != nil {
			return fmt.Errorf("create category %q: %w", c.name, err)
		}

		for _, it := range c.items {
			if _, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
				Name:        it.name,
				Description: it.description,
				Price:       database.DecimalToNumeric(decimal.RequireFromString(it.price)),
				CategoryID:  cat.ID,
				IsVeg:       it.isVeg,
				IsAvailable: true,
			}); err != nil {
				return fmt.Errorf("create menu item %q: %w", it.name, err)
			}
			items++
		}
		log.Info("created category", zap.String("name", cat.Name), zap.Int64("id", cat.ID), zap.Int("items", len(c.items)))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Info("seed completed", zap.Int("categories", len(starterMenu)), zap.Int("items", items))
	return nil
}
