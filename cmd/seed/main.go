package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/groupcollect/groupcollect-backend/internal/auth"
	"github.com/groupcollect/groupcollect-backend/internal/collects"
	"github.com/groupcollect/groupcollect-backend/internal/comments"
	"github.com/groupcollect/groupcollect-backend/internal/notifications"
	"github.com/groupcollect/groupcollect-backend/internal/payments"
	"github.com/groupcollect/groupcollect-backend/internal/users"
	pkgAuth "github.com/groupcollect/groupcollect-backend/pkg/auth"
	"github.com/groupcollect/groupcollect-backend/pkg/censor"
	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/enums"
	pkgerrors "github.com/groupcollect/groupcollect-backend/pkg/errors"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	"github.com/groupcollect/groupcollect-backend/pkg/mail"
	"github.com/groupcollect/groupcollect-backend/pkg/migrate"
)

const seedPassword = "groupcollect-demo"

type seeder struct {
	logg     *logger.Logger
	usersRep *users.Repository
	register auth.RegisterService
	admins   auth.RegisterService
	collects collects.Service
	payments payments.Service
	comments comments.Service
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	userCount := flag.Int("users", 5, "number of regular users to create")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	if cfg.App.IsProd() {
		logg.Warn(ctx, "refusing to seed a production environment")
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	s, err := newSeeder(cfg, dbClient, logg)
	requireResource(ctx, logg, "services", err)

	if err := s.run(ctx, *userCount); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "users", *userCount), "seed completed")
}

func newSeeder(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) (*seeder, error) {
	usersRepo := users.NewRepository(dbClient.DB())
	registerParams := auth.RegisterServiceParams{DB: dbClient, PasswordConfig: cfg.Password}

	register, err := auth.NewRegisterService(registerParams)
	if err != nil {
		return nil, err
	}
	admins, err := auth.NewAdminRegisterService(registerParams)
	if err != nil {
		return nil, err
	}

	notify, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notifications.NewRepository(dbClient.DB()),
		Sender: mail.NewConsoleSender(logg),
		From:   cfg.Mail.From,
		Logger: logg,
	})
	if err != nil {
		return nil, err
	}

	collectsRepo := collects.NewRepository(dbClient.DB())
	collectsSvc, err := collects.NewService(collects.ServiceParams{
		DB:            dbClient,
		Repo:          collectsRepo,
		Users:         usersRepo,
		Notifications: notify,
		Censor:        censor.Default(),
		AdminURL:      cfg.App.AdminCollectURL,
		Logger:        logg,
	})
	if err != nil {
		return nil, err
	}

	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		DB:            dbClient,
		Repo:          payments.NewRepository(dbClient.DB()),
		Collects:      collectsRepo,
		Users:         usersRepo,
		Notifications: notify,
		Logger:        logg,
	})
	if err != nil {
		return nil, err
	}

	commentsSvc, err := comments.NewService(comments.ServiceParams{
		DB:            dbClient,
		Repo:          comments.NewRepository(dbClient.DB()),
		Collects:      collectsRepo,
		Users:         usersRepo,
		Notifications: notify,
		Censor:        censor.Default(),
		Logger:        logg,
	})
	if err != nil {
		return nil, err
	}

	return &seeder{
		logg:     logg,
		usersRep: usersRepo,
		register: register,
		admins:   admins,
		collects: collectsSvc,
		payments: paymentsSvc,
		comments: commentsSvc,
	}, nil
}

func (s *seeder) run(ctx context.Context, userCount int) error {
	adminID, err := s.ensureUser(ctx, s.admins, "admin")
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	admin := pkgAuth.Actor{UserID: adminID, Role: enums.UserRoleAdmin}

	donors := make([]uuid.UUID, 0, userCount)
	for i := 1; i <= userCount; i++ {
		id, err := s.ensureUser(ctx, s.register, fmt.Sprintf("donor%02d", i))
		if err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}
		donors = append(donors, id)
	}
	if len(donors) < 2 {
		return fmt.Errorf("at least two users are required, got %d", len(donors))
	}

	author := donors[0]
	goal := decimal.NewFromInt(1000)
	endAt := time.Now().UTC().AddDate(0, 1, 0)

	active, err := s.createCollect(ctx, author, "Birthday gift for Anna", enums.OccasionBirthday, &goal, &endAt)
	if err != nil {
		return err
	}
	funded, err := s.createCollect(ctx, author, "Team trip to the mountains", enums.OccasionTravel, &goal, &endAt)
	if err != nil {
		return err
	}
	if _, err := s.createCollect(ctx, donors[1], "Community garden", enums.OccasionProject, nil, nil); err != nil {
		return err
	}

	if _, err := s.collects.Activate(ctx, admin, []uuid.UUID{active.ID, funded.ID}); err != nil {
		if err := warnOnDispatch(ctx, s.logg, "activate collects", err); err != nil {
			return err
		}
	}

	amount := decimal.NewFromInt(150)
	for _, donor := range donors[1:] {
		if _, err := s.payments.Create(ctx, donor, payments.CreatePaymentInput{CollectID: active.ID, Amount: amount}); err != nil {
			if err := warnOnDispatch(ctx, s.logg, "seed payment", err); err != nil {
				return err
			}
		}
	}

	// A single payment for the full goal closes the second collect.
	if _, err := s.payments.Create(ctx, donors[1], payments.CreatePaymentInput{CollectID: funded.ID, Amount: goal}); err != nil {
		if err := warnOnDispatch(ctx, s.logg, "seed closing payment", err); err != nil {
			return err
		}
	}

	for _, donor := range donors[1:] {
		text := comments.CreateCommentInput{Text: "Happy to help!"}
		if _, err := s.comments.Create(ctx, donor, active.ID, text); err != nil {
			if err := warnOnDispatch(ctx, s.logg, "seed comment", err); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) ensureUser(ctx context.Context, svc auth.RegisterService, username string) (uuid.UUID, error) {
	account, err := svc.Register(ctx, auth.RegisterRequest{
		Username:  username,
		Email:     username + "@groupcollect.local",
		Password:  seedPassword,
		FirstName: username,
	})
	if err == nil {
		return account.ID, nil
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		return uuid.Nil, err
	}
	existing, findErr := s.usersRep.FindByUsername(ctx, username)
	if findErr != nil {
		return uuid.Nil, findErr
	}
	return existing.ID, nil
}

func (s *seeder) createCollect(ctx context.Context, author uuid.UUID, title string, occasion enums.Occasion, goal *decimal.Decimal, endAt *time.Time) (*collects.CollectDTO, error) {
	card := "4111111111111111"
	dto, err := s.collects.Create(ctx, author, collects.CreateCollectInput{
		Title:       title,
		Occasion:    string(occasion),
		Description: "Seeded collect: " + title,
		GoalAmount:  goal,
		EndAt:       endAt,
		Requisites: collects.Requisites{
			PaymentType:   string(enums.PaymentTypeCard),
			RecipientName: "Demo Recipient",
			CardNumber:    &card,
		},
	})
	if err != nil {
		if dto == nil {
			return nil, fmt.Errorf("create collect %q: %w", title, err)
		}
		if warnErr := warnOnDispatch(ctx, s.logg, "create collect", err); warnErr != nil {
			return nil, warnErr
		}
	}
	return dto, nil
}

// warnOnDispatch tolerates mail delivery failures; the rows are committed.
func warnOnDispatch(ctx context.Context, logg *logger.Logger, step string, err error) error {
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		return fmt.Errorf("%s: %w", step, err)
	}
	logg.Warn(logg.WithFields(ctx, map[string]any{"step": step, "error": err.Error()}), "notification delivery failed")
	return nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
