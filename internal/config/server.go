package config

import (
	"NutriVision/database/postgres"
	analysisHandler "NutriVision/internal/api/analysis/handler"
	analysisService "NutriVision/internal/api/analysis/service"
	meallogHandler "NutriVision/internal/api/meallog/handler"
	meallogRepository "NutriVision/internal/api/meallog/repository"
	meallogService "NutriVision/internal/api/meallog/service"
	speechHandler "NutriVision/internal/api/speech/handler"
	speechService "NutriVision/internal/api/speech/service"
	"NutriVision/internal/middleware"
	"NutriVision/pkg/audio"
	"NutriVision/pkg/estimation"
	"NutriVision/pkg/gemini"
	"NutriVision/pkg/redis"
	"NutriVision/pkg/s3"
	"NutriVision/pkg/segmentation"
	"NutriVision/pkg/utils"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
)

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	db            *sqlx.DB
	log           *logrus.Logger
	middleware    middleware.Middleware
	validator     *validator.Validate
	utils         utils.IUtils
	handlers      []handler
	redisServer   redis.IRedis
	segmenterPool *segmentation.Pool
	estimator     estimation.IEstimator
	transcriber   audio.ITranscriber
	geminiClient  gemini.IGemini
	s3Client      s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSegmenterPool() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before segmenter pool")
		}

		size := segmentation.DefaultPoolSize
		if raw := os.Getenv("SEGMENTER_POOL_SIZE"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("invalid SEGMENTER_POOL_SIZE: %w", err)
			}
			size = parsed
		}

		s.segmenterPool = segmentation.NewPool(s.log, size)
		return nil
	}
}

func WithEstimator() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before estimator")
		}

		estimator, err := estimation.NewEstimator(s.log, estimation.DefaultProfileTable())
		if err != nil {
			return fmt.Errorf("failed to create estimator: %w", err)
		}
		s.estimator = estimator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithTranscriber() ServerOption {
	return func(s *Server) error {
		transcriber, err := audio.NewTranscriptionService()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create transcription service: %v", err)
			}
			return fmt.Errorf("failed to create transcription service: %w", err)
		}
		s.transcriber = transcriber
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Analysis Domain
	analysisServices := analysisService.New(s.log, s.segmenterPool, s.estimator, s.redisServer, s.utils)
	analysisHandlers := analysisHandler.New(s.log, s.validator, s.middleware, analysisServices, s.utils)

	// Meal Log Domain
	meallogRepo := meallogRepository.New(s.db, s.log)
	meallogServices := meallogService.New(s.log, meallogRepo, s.s3Client, s.utils)
	meallogHandlers := meallogHandler.New(s.log, s.validator, s.middleware, meallogServices)

	// Speech Domain
	speechServices := speechService.New(s.log, s.transcriber, s.geminiClient)
	speechHandlers := speechHandler.New(s.log, s.validator, s.middleware, speechServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, analysisHandlers, meallogHandlers, speechHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.segmenterPool != nil {
			s.segmenterPool.Close()
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})

	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"status":  "ok",
			"service": "nutrivision-backend",
		})
	})
}
