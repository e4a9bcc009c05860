package infra

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericToFloat64_Zero(t *testing.T) {
	v, err := NumericToFloat64(Float64ToNumeric(0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestNumericToFloat64_TwoDecimals(t *testing.T) {
	v, err := NumericToFloat64(Float64ToNumeric(57.5))
	require.NoError(t, err)
	assert.InDelta(t, 57.5, v, 1e-9)
}

func TestNumericToFloat64_PositiveExponent(t *testing.T) {
	n := pgtype.Numeric{Int: big.NewInt(15), Exp: 2, Valid: true}
	v, err := NumericToFloat64(n)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, v)
}

func TestNumericToFloat64_NullReturnsError(t *testing.T) {
	_, err := NumericToFloat64(pgtype.Numeric{Valid: false})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestNumericToFloat64_NaNReturnsError(t *testing.T) {
	_, err := NumericToFloat64(pgtype.Numeric{NaN: true, Valid: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NaN")
}

func TestFloat64ToNumeric_Rounds(t *testing.T) {
	n := Float64ToNumeric(1.005 + 1e-9)
	assert.Equal(t, int32(-2), n.Exp)
	assert.Equal(t, int64(101), n.Int.Int64())

	n = Float64ToNumeric(2.0 / 3.0)
	assert.Equal(t, int64(67), n.Int.Int64())
}

func TestFloat64ToNumeric_Roundtrip(t *testing.T) {
	for _, v := range []float64{0, 1, 0.5, 2.25, 123456.78, 999999999999.99} {
		got, err := NumericToFloat64(Float64ToNumeric(v))
		require.NoError(t, err, "value: %v", v)
		assert.InDelta(t, v, got, 1e-6, "value: %v", v)
	}
}
