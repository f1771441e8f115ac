package meallogService

import (
	"NutriVision/internal/api/meallog"
	"NutriVision/internal/entity"
	contextPkg "NutriVision/pkg/context"
	"encoding/json"
	"fmt"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"io"
	"mime/multipart"
	"time"
)

const mealImageMaxSize = 1024

func (s *meallogService) CreateEntry(ctx context.Context, req meallog.CreateMealEntryRequest, imageFile *multipart.FileHeader) (entity.MealEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.meallogRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.MealEntry{}, err
	}

	var items []entity.MealItem
	if req.Items != "" {
		if err := json.Unmarshal([]byte(req.Items), &items); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Invalid meal items payload")
			return entity.MealEntry{}, meallog.ErrInvalidMealData
		}
	}

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return entity.MealEntry{}, err
	}

	var imageLink string
	if imageFile != nil {
		if err := s.utils.ValidateImageFile(imageFile); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"filename":   imageFile.Filename,
				"error":      err.Error(),
			}).Warn("Invalid meal image file")
			return entity.MealEntry{}, meallog.ErrInvalidImageFile
		}

		fileContent, err := imageFile.Open()
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to open meal image file")
			return entity.MealEntry{}, err
		}

		imageData, err := io.ReadAll(fileContent)
		fileContent.Close()
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to read meal image file")
			return entity.MealEntry{}, err
		}

		downscaled, err := s.utils.DownscaleImage(imageData, mealImageMaxSize)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to decode meal image file")
			return entity.MealEntry{}, meallog.ErrInvalidImageFile
		}

		uploadedFileURL, err := s.s3.UploadBytes(fmt.Sprintf("meals/%s.jpg", ULID), downscaled, "image/jpeg")
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to upload meal image")
			return entity.MealEntry{}, meallog.ErrFailedToUploadImage
		}
		imageLink = uploadedFileURL
	}

	entry := entity.MealEntry{
		ID:              ULID,
		UserID:          req.UserID,
		ImageLink:       imageLink,
		PlateType:       req.PlateType,
		PlateAreaCM2:    req.PlateAreaCM2,
		TotalFoodPixels: req.TotalFoodPixels,
		TotalGramsEst:   req.TotalGramsEst,
		Items:           items,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := entry.Validate(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid meal entry data")
		return entity.MealEntry{}, err
	}

	if err := repo.MealLog.CreateEntry(ctx, entry); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create meal entry")

		if imageLink != "" {
			if deleteErr := s.s3.DeleteFile(imageLink); deleteErr != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      deleteErr.Error(),
				}).Error("Failed to delete meal image after entry creation failure")
			}
		}

		return entity.MealEntry{}, meallog.ErrCreateEntry
	}

	return entry, nil
}

func (s *meallogService) GetEntryByID(ctx context.Context, id string, userID string) (entity.MealEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.meallogRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.MealEntry{}, err
	}

	entry, err := repo.MealLog.GetEntryByID(ctx, id)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		}).Error("Failed to get meal entry by ID")
		return entity.MealEntry{}, err
	}

	if entry.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"entry_user_id": entry.UserID,
			"user_id":       userID,
		}).Warn("Meal entry does not belong to user")
		return entity.MealEntry{}, meallog.ErrEntryNotOwned
	}

	if entry.ImageLink != "" {
		imageLink, err := s.s3.PresignUrl(entry.ImageLink)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to presign image link")
			return entity.MealEntry{}, err
		}
		entry.ImageLink = imageLink
	}

	return entry, nil
}

func (s *meallogService) GetEntriesByPeriod(ctx context.Context, userID string, period string) ([]entity.MealEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.meallogRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	if !entity.IsValidMealPeriod(period) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"period":     period,
		}).Warn("Invalid period")
		return nil, meallog.ErrInvalidPeriod
	}

	entries, err := repo.MealLog.GetEntriesByPeriod(ctx, userID, period)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"period":     period,
			"error":      err.Error(),
		}).Error("Failed to get meal entries by period")
		return nil, err
	}

	return entries, nil
}

func (s *meallogService) DeleteEntry(ctx context.Context, id string, userID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.meallogRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	entry, err := repo.MealLog.GetEntryByID(ctx, id)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		}).Error("Failed to get meal entry before delete")
		return err
	}

	if entry.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id":    requestID,
			"entry_user_id": entry.UserID,
			"user_id":       userID,
		}).Warn("Meal entry does not belong to user")
		return meallog.ErrEntryNotOwned
	}

	if err := repo.MealLog.DeleteEntry(ctx, id); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		}).Error("Failed to delete meal entry")
		return meallog.ErrDeleteEntry
	}

	if entry.ImageLink != "" {
		if err := s.s3.DeleteFile(entry.ImageLink); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
				"error":      err.Error(),
			}).Error("Failed to delete meal image")
		}
	}

	return nil
}
