package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/veldrin/orepay/internal/common/clock"
	"github.com/veldrin/orepay/internal/common/uuid"
	"github.com/veldrin/orepay/internal/handlers/discord"
	eventRepo "github.com/veldrin/orepay/internal/repositories/event"
	participationRepo "github.com/veldrin/orepay/internal/repositories/participation"
	priceRepo "github.com/veldrin/orepay/internal/repositories/price"
	"github.com/veldrin/orepay/internal/services/messaging"
	"github.com/veldrin/orepay/internal/services/payroll"
	"github.com/veldrin/orepay/internal/services/tracking"
)

func main() {
	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Initialize repositories
	evtRepo, err := eventRepo.NewRedis(&eventRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create event repository: %v", err)
	}

	// Participation lives in Postgres when DATABASE_URL is set, Redis otherwise
	var partRepo participationRepo.Repository
	if databaseURL := getEnv("DATABASE_URL", ""); databaseURL != "" {
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			log.Fatalf("Failed to create Postgres pool: %v", err)
		}
		partRepo, err = participationRepo.NewPostgres(ctx, &participationRepo.PostgresConfig{
			Pool: pool,
		})
		if err != nil {
			log.Fatalf("Failed to create Postgres participation repository: %v", err)
		}
		log.Println("Participation store: Postgres")
	} else {
		partRepo, err = participationRepo.NewRedis(&participationRepo.Config{
			RedisClient: redisClient,
		})
		if err != nil {
			log.Fatalf("Failed to create participation repository: %v", err)
		}
		log.Println("Participation store: Redis")
	}

	priceOracle, err := priceRepo.NewRedis(&priceRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create price oracle: %v", err)
	}

	// Initialize services
	trackingSvc, err := tracking.New(&tracking.Config{
		EventRepo:         evtRepo,
		ParticipationRepo: partRepo,
		Clock:             clock.New(),
		UUIDGenerator:     uuid.New(),
	})
	if err != nil {
		log.Fatalf("Failed to create tracking service: %v", err)
	}

	payrollSvc, err := payroll.New(&payroll.Config{
		EventRepo:         evtRepo,
		ParticipationRepo: partRepo,
		PriceOracle:       priceOracle,
		Clock:             clock.New(),
	})
	if err != nil {
		log.Fatalf("Failed to create payroll service: %v", err)
	}

	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{})
	if err != nil {
		log.Fatalf("Failed to create messaging service: %v", err)
	}

	// Get Discord token from environment
	discordToken := getEnv("DISCORD_TOKEN", "")
	if discordToken == "" {
		log.Fatal("DISCORD_TOKEN environment variable is required")
	}

	// Initialize Discord bot
	bot, err := discord.New(&discord.Config{
		Token:            discordToken,
		ApplicationID:    getEnv("APPLICATION_ID", ""),
		GuildID:          getEnv("GUILD_ID", ""),
		OrgRoleID:        getEnv("ORG_ROLE_ID", ""),
		TrackingService:  trackingSvc,
		PayrollService:   payrollSvc,
		MessagingService: messagingSvc,
	})
	if err != nil {
		log.Fatalf("Failed to create Discord bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to start Discord bot: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if err := bot.Stop(); err != nil {
		log.Printf("Error stopping bot: %v", err)
	}

	log.Println("Bot has been shut down")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
