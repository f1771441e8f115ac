package meallogService

import (
	"NutriVision/internal/api/meallog"
	meallogRepository "NutriVision/internal/api/meallog/repository"
	"NutriVision/internal/entity"
	"NutriVision/pkg/s3"
	"NutriVision/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"mime/multipart"
)

type IMealLogService interface {
	CreateEntry(ctx context.Context, req meallog.CreateMealEntryRequest, imageFile *multipart.FileHeader) (entity.MealEntry, error)
	GetEntryByID(ctx context.Context, id string, userID string) (entity.MealEntry, error)
	GetEntriesByPeriod(ctx context.Context, userID string, period string) ([]entity.MealEntry, error)
	DeleteEntry(ctx context.Context, id string, userID string) error
}

type meallogService struct {
	log               *logrus.Logger
	meallogRepository meallogRepository.Repository
	s3                s3.ItfS3
	utils             utils.IUtils
}

func New(log *logrus.Logger, mr meallogRepository.Repository, s3 s3.ItfS3, utils utils.IUtils) IMealLogService {
	return &meallogService{
		log:               log,
		meallogRepository: mr,
		s3:                s3,
		utils:             utils,
	}
}
