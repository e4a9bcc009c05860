package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ValidateUserID rejects the zero UUID.
func ValidateUserID(id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	return nil
}

// ValidateDurationSeconds rejects negative durations. The top scoring tier is
// open-ended, so there is no upper bound.
func ValidateDurationSeconds(seconds int) error {
	if seconds < 0 {
		return ErrInvalidDuration(fmt.Sprintf("duration must not be negative, got %d seconds", seconds))
	}
	return nil
}

// ValidatePositiveXP checks that a ledger amount is a positive finite number.
func ValidatePositiveXP(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("xp amount must be a non-negative number, got %v", amount)
	}
	return nil
}

// ValidateFrequency checks a weekly workout target.
func ValidateFrequency(frequency int) error {
	if frequency < 1 || frequency > 7 {
		return fmt.Errorf("frequency must be between 1 and 7, got %d", frequency)
	}
	return nil
}

// ValidateWorkoutCheckin checks the ingestion input before any persistence.
func ValidateWorkoutCheckin(p WorkoutCheckinParams) error {
	if err := ValidateUserID(p.UserID); err != nil {
		return ErrValidation(err.Error())
	}
	if p.CheckedInAt.IsZero() {
		return ErrValidation("checked_in_at is required")
	}
	return ValidateDurationSeconds(p.DurationSeconds)
}

// ValidateMealLog checks the ingestion input before any persistence.
func ValidateMealLog(p MealLogParams) error {
	if err := ValidateUserID(p.UserID); err != nil {
		return ErrValidation(err.Error())
	}
	if p.SlotID == uuid.Nil {
		return ErrValidation("meal_config_id is required")
	}
	if p.MealTime.IsZero() {
		return ErrValidation("meal_time is required")
	}
	return nil
}
