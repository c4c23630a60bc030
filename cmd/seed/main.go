package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	catalogapp "github.com/cartly/backend/internal/application/catalog"
	identityapp "github.com/cartly/backend/internal/application/identity"
	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/infrastructure/config"
	"github.com/cartly/backend/internal/infrastructure/logger"
	"github.com/cartly/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// Seeds the database with an admin account and a demo catalog so a
// fresh environment is browsable immediately. Safe to run repeatedly:
// existing rows are skipped, never overwritten.
func main() {
	var (
		adminName     string
		adminEmail    string
		adminPassword string
		logLevel      string
		skipProducts  bool
	)

	flag.StringVar(&adminName, "admin-name", "Admin", "Admin display name")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "Admin email address")
	flag.StringVar(&adminPassword, "admin-password", "", "Admin password (required)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&skipProducts, "skip-products", false, "Only create the admin account")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if adminPassword == "" {
		log.Fatal("Missing required flag -admin-password")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	userService := identityapp.NewUserService(userRepo, log)
	productService := catalogapp.NewProductService(productRepo, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	admin, err := userService.CreateAdmin(ctx, adminName, adminEmail, adminPassword)
	switch {
	case errors.Is(err, shared.ErrAlreadyExists):
		log.Info("Admin account already exists, skipping", zap.String("email", adminEmail))
	case err != nil:
		log.Fatal("Failed to create admin account", zap.Error(err))
	default:
		log.Info("Admin account created",
			zap.String("id", admin.ID.String()),
			zap.String("email", admin.Email),
		)
	}

	if skipProducts {
		log.Info("Skipping product seed")
		return
	}

	created, skipped := 0, 0
	for _, req := range sampleProducts() {
		product, err := productService.Create(ctx, req)
		if err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				skipped++
				continue
			}
			log.Fatal("Failed to seed product",
				zap.String("sku", req.SKU),
				zap.Error(err),
			)
		}
		created++
		log.Debug("Product seeded",
			zap.String("id", product.ID.String()),
			zap.String("sku", req.SKU),
		)
	}

	log.Info("Seed completed",
		zap.Int("products_created", created),
		zap.Int("products_skipped", skipped),
	)
}

func sampleProducts() []catalogapp.CreateProductRequest {
	return []catalogapp.CreateProductRequest{
		{
			Name:         "Classic Denim Jacket",
			Description:  "A timeless denim jacket with button closure and chest pockets.",
			SKU:          "JKT-DNM-001",
			Price:        "79.99",
			CountInStock: 40,
			Category:     "Jackets",
			Collection:   "Fall",
			Brand:        "Cartly Basics",
			Material:     "Cotton Denim",
			Gender:       "Unisex",
			Sizes:        []string{"S", "M", "L", "XL"},
			Colors:       []string{"Blue", "Black"},
			Tags:         []string{"denim", "outerwear"},
			Images: []catalogapp.ImageInput{
				{URL: "https://cdn.example.com/seed/denim-jacket.jpg", AltText: "Classic denim jacket"},
			},
			IsFeatured:  true,
			IsPublished: true,
		},
		{
			Name:          "Slim Fit Chinos",
			Description:   "Versatile slim fit chinos with a stretch waistband.",
			SKU:           "PNT-CHN-002",
			Price:         "54.99",
			DiscountPrice: "44.99",
			CountInStock:  60,
			Category:      "Pants",
			Collection:    "All Season",
			Brand:         "Cartly Basics",
			Material:      "Cotton Twill",
			Gender:        "Men",
			Sizes:         []string{"30", "32", "34", "36"},
			Colors:        []string{"Khaki", "Navy", "Olive"},
			Tags:          []string{"chinos", "office"},
			Images: []catalogapp.ImageInput{
				{URL: "https://cdn.example.com/seed/chinos.jpg", AltText: "Slim fit chinos"},
			},
			IsPublished: true,
		},
		{
			Name:         "Merino Crewneck Sweater",
			Description:  "Lightweight merino wool sweater with ribbed cuffs.",
			SKU:          "SWT-MRN-003",
			Price:        "89.99",
			CountInStock: 25,
			Category:     "Sweaters",
			Collection:   "Winter",
			Brand:        "Northloom",
			Material:     "Merino Wool",
			Gender:       "Women",
			Sizes:        []string{"XS", "S", "M", "L"},
			Colors:       []string{"Charcoal", "Cream"},
			Tags:         []string{"wool", "knitwear"},
			Images: []catalogapp.ImageInput{
				{URL: "https://cdn.example.com/seed/merino-sweater.jpg", AltText: "Merino crewneck sweater"},
			},
			IsFeatured:  true,
			IsPublished: true,
		},
		{
			Name:         "Everyday Cotton Tee",
			Description:  "Soft combed cotton tee with a relaxed fit.",
			SKU:          "TEE-CTN-004",
			Price:        "19.99",
			CountInStock: 120,
			Category:     "T-Shirts",
			Collection:   "Summer",
			Brand:        "Cartly Basics",
			Material:     "Cotton",
			Gender:       "Unisex",
			Sizes:        []string{"S", "M", "L", "XL", "XXL"},
			Colors:       []string{"White", "Black", "Heather Grey"},
			Tags:         []string{"basics", "tee"},
			Images: []catalogapp.ImageInput{
				{URL: "https://cdn.example.com/seed/cotton-tee.jpg", AltText: "Everyday cotton tee"},
			},
			IsPublished: true,
		},
		{
			Name:         "Waterproof Trail Shell",
			Description:  "Packable waterproof shell with taped seams and an adjustable hood.",
			SKU:          "JKT-SHL-005",
			Price:        "149.99",
			CountInStock: 15,
			Category:     "Jackets",
			Collection:   "Outdoor",
			Brand:        "Northloom",
			Material:     "Recycled Nylon",
			Gender:       "Unisex",
			Sizes:        []string{"S", "M", "L"},
			Colors:       []string{"Forest", "Slate"},
			Tags:         []string{"rain", "hiking"},
			Images: []catalogapp.ImageInput{
				{URL: "https://cdn.example.com/seed/trail-shell.jpg", AltText: "Waterproof trail shell"},
			},
			IsPublished: true,
		},
	}
}
