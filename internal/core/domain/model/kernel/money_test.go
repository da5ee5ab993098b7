package kernel_test

import (
	"encoding/json"
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := kernel.NewMoney(decimal.RequireFromString("12.345"))
	require.NoError(t, err)
	assert.Equal(t, "12.35", m.String())
	assert.True(t, m.IsPositive())

	_, err = kernel.NewMoney(decimal.NewFromInt(-1))
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestMoney_Percent(t *testing.T) {
	price := kernel.MoneyFromInt(10000)

	assert.Equal(t, "7000.00", price.Percent(decimal.NewFromInt(70)).String())
	assert.Equal(t, "3000.00", price.Percent(decimal.NewFromInt(30)).String())
	assert.Equal(t, "3333.33", price.Percent(decimal.RequireFromString("33.3333")).String())
	assert.True(t, price.Percent(decimal.Zero).IsZero())
}

func TestMoney_MulRate(t *testing.T) {
	price := kernel.MoneyFromInt(10000)

	assert.Equal(t, "8500.00", price.MulRate(decimal.RequireFromString("0.85")).String())
	assert.True(t, price.MulRate(decimal.NewFromInt(-1)).IsZero())
}

func TestMoney_JSON(t *testing.T) {
	var m kernel.Money
	require.NoError(t, json.Unmarshal([]byte(`2000`), &m))
	assert.True(t, m.IsEqual(kernel.MoneyFromInt(2000)))

	require.NoError(t, json.Unmarshal([]byte(`"19.9"`), &m))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "19.90", string(data))

	assert.ErrorIs(t, json.Unmarshal([]byte(`-5`), &m), errs.ErrValueIsOutOfRange)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"abc"`), &m), errs.ErrValueIsInvalid)
}
