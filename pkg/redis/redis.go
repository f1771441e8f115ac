package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

type IRedis interface {
	SetAnalysis(ctx context.Context, key string, payload []byte, expiration time.Duration) error
	GetAnalysis(ctx context.Context, key string) ([]byte, error)
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) SetAnalysis(ctx context.Context, key string, payload []byte, expiration time.Duration) error {
	err := r.client.Set(ctx, key, payload, expiration).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error caching analysis for key %s: %v", key, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Cached analysis for key %s with expiration %v", key, expiration))
	return nil
}

// GetAnalysis returns the cached payload, or nil without error on a miss.
func (r *redisClient) GetAnalysis(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Analysis cache miss for key %s", key))
		return nil, nil
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading analysis cache for key %s: %v", key, err))
		return nil, err
	}
	logrus.Debug(fmt.Sprintf("Analysis cache hit for key %s", key))
	return val, nil
}
