package meallogRepository

const (
	queryCreateMealEntry = `
		INSERT INTO meal_entries (
			id,
			user_id,
			image_link,
			plate_type,
			plate_area_cm2,
			total_food_pixels,
			total_grams_est,
			items,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:image_link,
			:plate_type,
			:plate_area_cm2,
			:total_food_pixels,
			:total_grams_est,
			:items,
			:created_at,
			:updated_at
		)
	`

	queryGetAllMealEntries = `
		SELECT
			id,
			user_id,
			image_link,
			plate_type,
			plate_area_cm2,
			total_food_pixels,
			total_grams_est,
			items,
			created_at,
			updated_at
		FROM meal_entries
		WHERE user_id = :user_id
		ORDER BY created_at DESC
	`

	queryGetCurrentWeekMealEntries = `
		SELECT
			id,
			user_id,
			image_link,
			plate_type,
			plate_area_cm2,
			total_food_pixels,
			total_grams_est,
			items,
			created_at,
			updated_at
		FROM meal_entries
		WHERE
			user_id = :user_id
			AND created_at >= date_trunc('week', CURRENT_DATE)
			AND created_at < date_trunc('week', CURRENT_DATE) + interval '1 week'
		ORDER BY created_at DESC
	`

	queryGetCurrentMonthMealEntries = `
		SELECT
			id,
			user_id,
			image_link,
			plate_type,
			plate_area_cm2,
			total_food_pixels,
			total_grams_est,
			items,
			created_at,
			updated_at
		FROM meal_entries
		WHERE
			user_id = :user_id
			AND created_at >= date_trunc('month', CURRENT_DATE)
			AND created_at < date_trunc('month', CURRENT_DATE) + interval '1 month'
		ORDER BY created_at DESC
	`

	queryGetMealEntryById = `
		SELECT
			id,
			user_id,
			image_link,
			plate_type,
			plate_area_cm2,
			total_food_pixels,
			total_grams_est,
			items,
			created_at,
			updated_at
		FROM meal_entries
		WHERE id = :id
	`

	queryDeleteMealEntry = `
		DELETE FROM meal_entries
		WHERE id = :id
	`
)
