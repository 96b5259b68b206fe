package boot

import (
	"context"
	"errors"
	"hotelmaint/src/config"
	"hotelmaint/src/db"
	"hotelmaint/src/lib"
	awslib "hotelmaint/src/lib/aws"
	"hotelmaint/src/lib/mailer"
	"hotelmaint/src/models"
	"hotelmaint/src/repository"
	"hotelmaint/src/services"
	"hotelmaint/src/session"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Hotel{},
		&models.User{},
		&models.Room{},
		&models.Ticket{},
		&models.Checklist{},
		&models.ChecklistRoomStatus{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitStore returns the postgres store, or the in-memory one when
// STORE_DRIVER=memory.
func InitStore() *repository.Store {
	if config.StoreDriver() == "memory" {
		log.Println("Using in-memory store")
		return repository.NewMemoryStore(nil)
	}
	return repository.NewGormStore(InitDb())
}

func redisAvailable() bool {
	return os.Getenv("REDIS_HOST") != "" && lib.GetRedisClient() != nil
}

// InitFeed uses redis pub/sub when REDIS_HOST is set so every API instance
// sees every change.
func InitFeed() lib.Feed {
	if redisAvailable() {
		return lib.NewRedisFeed(lib.GetRedisClient())
	}
	log.Println("[realtime] REDIS_HOST not set, using in-process feed")
	return lib.NewLocalFeed()
}

func InitSessionCache() session.Cache {
	if redisAvailable() {
		return session.NewRedisCache(lib.GetRedisClient(), config.SESSION_CACHE_TTL)
	}
	return session.NewMemoryCache(config.SESSION_CACHE_TTL)
}

func InitIdempotency() services.KeyClaimer {
	if redisAvailable() {
		return services.NewRedisKeyClaimer(lib.GetRedisClient())
	}
	return services.NewMemoryKeyClaimer()
}

// InitStorage returns S3 storage for S3_MEDIA_BUCKET, in-memory storage
// otherwise.
func InitStorage(ctx context.Context) services.ObjectStorage {
	bucket := config.MediaBucket()
	if bucket == "" {
		log.Println("S3_MEDIA_BUCKET not set, media is kept in memory")
		return services.NewMemoryStorage()
	}
	cfg, err := awslib.LoadConfig(ctx)
	if err != nil {
		log.Printf("Error loading AWS config, media is kept in memory: %s\n", err.Error())
		return services.NewMemoryStorage()
	}
	return awslib.NewS3Storage(cfg, bucket)
}

func InitMailer(ctx context.Context) mailer.Mailer {
	driver := config.MailDriver()
	switch driver {
	case "smtp":
		return mailer.SMTPMailer{}
	case "ses", "sqs":
		cfg, err := awslib.LoadConfig(ctx)
		if err != nil {
			log.Printf("Error loading AWS config for %s mailer: %s\n", driver, err.Error())
			break
		}
		if driver == "ses" {
			return mailer.SESMailer{Sender: awslib.NewSESSender(cfg)}
		}
		return mailer.QueueMailer{Queue: awslib.NewSQSProducer(cfg, os.Getenv("EMAIL_QUEUE"))}
	}
	return mailer.LogMailer{}
}

// InitScheduler registers the escalation job and starts the scheduler.
func InitScheduler(tickets *services.TicketService) error {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return err
	}
	if tickets == nil {
		return errors.New("ticket service is required")
	}
	interval := config.EscalationInterval()
	_, err = lib.CreateCronJob("ticket-escalation", interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := tickets.Escalate(ctx); err != nil {
			log.Printf("Escalation run failed: %s\n", err.Error())
		}
	})
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return err
	}
	log.Printf("Escalation job runs every %s\n", interval.String())
	sched.Start()
	return nil
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 10 * time.Second
