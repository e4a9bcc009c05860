package infra

import (
	"fmt"
	"math"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericToFloat64 converts a pgtype.Numeric (PostgreSQL numeric(14,2)) to float64.
// Returns an error if the value is NULL, NaN or infinite.
func NumericToFloat64(n pgtype.Numeric) (float64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}
	if n.NaN {
		return 0, fmt.Errorf("numeric value is NaN")
	}
	if n.InfinityModifier != pgtype.Finite {
		return 0, fmt.Errorf("numeric value is infinite")
	}

	f, err := n.Float64Value()
	if err != nil {
		return 0, fmt.Errorf("numeric to float64: %w", err)
	}
	return f.Float64, nil
}

// Float64ToNumeric converts v to a two-decimal pgtype.Numeric, rounding half away from zero.
func Float64ToNumeric(v float64) pgtype.Numeric {
	cents := math.Round(v * 100)
	return pgtype.Numeric{
		Int:              big.NewInt(int64(cents)),
		Exp:              -2,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
