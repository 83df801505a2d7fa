// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"log"

	"marketplace_backend/internal/app"
	"marketplace_backend/internal/availability"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/jobs"
	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/message"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/platform/database"
	"marketplace_backend/internal/platform/logger"
	"marketplace_backend/internal/reservation"
	"marketplace_backend/internal/sale"
	"marketplace_backend/internal/user"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,

		// Auth / User
		user.NewTokenService, // Provides shared.TokenService
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Messaging (also serves as the notification fan-out's participant source)
		message.NewGORMRepository,
		message.NewService,
		wire.Bind(new(message.Service), new(*message.ServiceImplementation)),
		wire.Bind(new(notification.ParticipantSource), new(*message.ServiceImplementation)),
		message.NewHandler,

		// Notifications
		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,

		// Listings
		listing.NewGORMRepository,
		listing.NewService,
		wire.Bind(new(listing.Service), new(*listing.ServiceImplementation)),
		listing.NewHandler,

		// Reservation Ledger
		reservation.NewGORMRepository,
		reservation.NewService,
		wire.Bind(new(reservation.Service), new(*reservation.ServiceImplementation)),
		reservation.NewHandler,

		// Sale Records
		sale.NewGORMRepository,
		sale.NewService,
		wire.Bind(new(sale.Service), new(*sale.ServiceImplementation)),
		sale.NewHandler,

		// Availability View
		availability.NewResolver,
		wire.Bind(new(listing.AvailabilityResolver), new(*availability.Resolver)),

		// Jobs
		jobs.NewReservationCleanupJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
