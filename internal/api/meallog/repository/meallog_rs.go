package meallogRepository

import (
	"NutriVision/internal/api/meallog"
	"NutriVision/internal/entity"
	contextPkg "NutriVision/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

type MealEntryDB struct {
	ID              sql.NullString  `db:"id"`
	UserID          sql.NullString  `db:"user_id"`
	ImageLink       sql.NullString  `db:"image_link"`
	PlateType       sql.NullString  `db:"plate_type"`
	PlateAreaCM2    sql.NullFloat64 `db:"plate_area_cm2"`
	TotalFoodPixels sql.NullInt64   `db:"total_food_pixels"`
	TotalGramsEst   sql.NullFloat64 `db:"total_grams_est"`
	Items           []byte          `db:"items"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r *meallogRepository) CreateEntry(c context.Context, entry entity.MealEntry) error {
	requestID := contextPkg.GetRequestID(c)

	itemsJSON, err := json.Marshal(entry.Items)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode meal items for CreateEntry")
		return err
	}

	argsKV := map[string]interface{}{
		"id":                entry.ID,
		"user_id":           entry.UserID,
		"image_link":        entry.ImageLink,
		"plate_type":        entry.PlateType,
		"plate_area_cm2":    entry.PlateAreaCM2,
		"total_food_pixels": entry.TotalFoodPixels,
		"total_grams_est":   entry.TotalGramsEst,
		"items":             string(itemsJSON),
		"created_at":        time.Now(),
		"updated_at":        time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateMealEntry, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateEntry")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating meal entry")

		return err
	}

	return nil
}

func (r *meallogRepository) GetEntryByID(c context.Context, id string) (entity.MealEntry, error) {
	requestID := contextPkg.GetRequestID(c)
	var entry MealEntryDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetMealEntryById, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEntryByID named query preparation err")

		return entity.MealEntry{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetEntryByID no rows found")
			return entity.MealEntry{}, meallog.ErrEntryNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetEntryByID execution err")
		return entity.MealEntry{}, err
	}

	return r.makeMealEntry(requestID, entry), nil
}

func (r *meallogRepository) GetEntriesByPeriod(ctx context.Context, userID string, period string) ([]entity.MealEntry, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var entries []MealEntryDB
	var queryToUse string

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	switch period {
	case "all":
		queryToUse = queryGetAllMealEntries
	case "week":
		queryToUse = queryGetCurrentWeekMealEntries
	case "month":
		queryToUse = queryGetCurrentMonthMealEntries
	default:
		queryToUse = queryGetAllMealEntries
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"period":     period,
		}).Warn("Invalid period provided, defaulting to 'all'")
	}

	query, args, err := sqlx.Named(queryToUse, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"period":     period,
		}).Error("GetEntriesByPeriod named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &entries, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"period":     period,
		}).Error("GetEntriesByPeriod execution err")
		return nil, err
	}

	result := make([]entity.MealEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, r.makeMealEntry(requestID, entry))
	}

	return result, nil
}

func (r *meallogRepository) DeleteEntry(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteMealEntry, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteEntry named query preparation err")

		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteEntry execution err")

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteEntry rows affected err")

		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("DeleteEntry no rows affected")

		return meallog.ErrEntryNotFound
	}

	return nil
}

func (r *meallogRepository) makeMealEntry(requestID string, entry MealEntryDB) entity.MealEntry {
	items := make([]entity.MealItem, 0)
	if len(entry.Items) > 0 {
		if err := json.Unmarshal(entry.Items, &items); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"entry_id":   entry.ID.String,
				"error":      err.Error(),
			}).Warn("Failed to decode stored meal items")
		}
	}

	return entity.MealEntry{
		ID:              entry.ID.String,
		UserID:          entry.UserID.String,
		ImageLink:       entry.ImageLink.String,
		PlateType:       entry.PlateType.String,
		PlateAreaCM2:    entry.PlateAreaCM2.Float64,
		TotalFoodPixels: int(entry.TotalFoodPixels.Int64),
		TotalGramsEst:   entry.TotalGramsEst.Float64,
		Items:           items,
		CreatedAt:       entry.CreatedAt,
		UpdatedAt:       entry.UpdatedAt,
	}
}
