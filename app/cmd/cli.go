package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/db/seeders"
	"github.com/Rakhulsr/go-storefront/app/models/migrations"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/routes"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"github.com/Rakhulsr/go-storefront/app/utils/renderer"
	"github.com/Rakhulsr/go-storefront/app/utils/sessions"
	"github.com/Rakhulsr/go-storefront/app/utils/storage"
	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func RunCli(args []string) error {
	env := configs.LoadEnv()

	cmd := &cli.Command{
		Name:  "storefront",
		Usage: "Storefront catalog, cart and admin API",
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, env)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, env)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					slog.Info("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Fill the database with fake catalog data",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "categories", Value: 5, Usage: "number of categories"},
					&cli.IntFlag{Name: "products", Value: 10, Usage: "products per category"},
					&cli.IntFlag{Name: "tags", Value: 8, Usage: "number of tags"},
					&cli.IntFlag{Name: "users", Value: 3, Usage: "number of customer accounts"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					opts := seeders.Options{
						Categories:          int(c.Int("categories")),
						ProductsPerCategory: int(c.Int("products")),
						Tags:                int(c.Int("tags")),
						Users:               int(c.Int("users")),
					}
					if err := seeders.DBSeed(ctx, db, opts); err != nil {
						return err
					}
					slog.Info("seeding complete", "customer_password", seeders.DefaultPassword)
					return nil
				},
			},
			{
				Name:  "reprice",
				Usage: "Recompute product discounts from the latest discount of each category",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "only reprice this category id"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					return reprice(ctx, db, c.String("category"))
				},
			},
			{
				Name:  "create-superuser",
				Usage: "Create a staff account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "name", Value: "Admin"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					userSvc := services.NewUserService(db, repositories.NewUserRepository(db), repositories.NewCustomerRepository(db))
					user, err := userSvc.Register(ctx, services.RegisterInput{
						Email:    c.String("email"),
						Password: c.String("password"),
						Name:     c.String("name"),
						IsStaff:  true,
					})
					if err != nil {
						return err
					}
					slog.Info("superuser created", "id", user.ID, "email", user.Email)
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate session, CSRF and token secrets for .env",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "generated_keys.env", Usage: "file to write the keys to"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return configs.GenerateSessionKeys(os.Stdout, c.String("out"))
				},
			},
		},
	}

	return cmd.Run(context.Background(), args)
}

func reprice(ctx context.Context, db *gorm.DB, categoryID string) error {
	categoryRepo := repositories.NewCategoryRepository(db)
	discountSvc := services.NewDiscountService(db, repositories.NewDiscountRepository(db), categoryRepo, repositories.NewProductRepository(db))

	ids := []string{categoryID}
	if categoryID == "" {
		categories, err := categoryRepo.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		ids = ids[:0]
		for _, c := range categories {
			ids = append(ids, c.ID)
		}
	}

	for _, id := range ids {
		if err := discountSvc.ApplyCategoryDiscount(ctx, id); err != nil {
			return fmt.Errorf("reprice category %s: %w", id, err)
		}
	}
	slog.Info("reprice complete", "categories", len(ids))
	return nil
}

func newImageStore(ctx context.Context, env configs.ENV) (storage.ImageStore, error) {
	if env.StorageDriver == "s3" {
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    env.S3Bucket,
			Region:    env.S3Region,
			Endpoint:  env.S3Endpoint,
			AccessKey: env.S3AccessKey,
			SecretKey: env.S3SecretKey,
			PublicURL: env.StoragePublic,
			Prefix:    "product",
		})
	}
	return storage.NewLocalStore(env.StorageLocalDir, env.StoragePublic)
}

func serve(ctx context.Context, env configs.ENV) error {
	format.SetCurrencySymbol(env.CurrencySymbol)

	db, err := configs.OpenConnection(env)
	if err != nil {
		return err
	}

	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		return err
	}
	csrfKey, err := configs.CSRFKey(env)
	if err != nil {
		return err
	}
	if env.JWTSecret == "" {
		slog.Warn("JWT_SECRET is empty, token login is disabled")
	}

	images, err := newImageStore(ctx, env)
	if err != nil {
		return err
	}

	secure := env.IsProduction()
	handler := routes.NewRouter(routes.Dependencies{
		DB:       db,
		Render:   renderer.New(!secure),
		Sessions: sessions.NewCookieSessionStore(secure, keys.AuthKey, keys.EncKey),
		Tokens:   token.NewManager([]byte(env.JWTSecret), time.Duration(env.JWTTTLHours)*time.Hour),
		Images:   images,
		CSRFKey:  csrfKey,
		Secure:   secure,
	})

	server := &http.Server{
		Addr:              env.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", server.Addr, "env", env.AppEnv)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
