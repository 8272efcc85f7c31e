package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(99.99), USD)
		require.NoError(t, err)
		assert.Equal(t, "99.99", m.StringFixed(2))
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.456", EUR)
		require.NoError(t, err)
		assert.Equal(t, "123.456", m.Amount().String())
	})

	t.Run("from invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("abc", USD)
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	a := MustMoney(decimal.NewFromFloat(10.50), USD)
	b := MustMoney(decimal.NewFromFloat(4.25), USD)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "14.75", sum.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "6.25", diff.StringFixed(2))
	})

	t.Run("subtract below zero", func(t *testing.T) {
		diff, err := b.Subtract(a)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
	})

	t.Run("multiply", func(t *testing.T) {
		m := a.Multiply(decimal.NewFromInt(3))
		assert.Equal(t, "31.50", m.StringFixed(2))
	})

	t.Run("currency mismatch", func(t *testing.T) {
		eur := MustMoney(decimal.NewFromInt(1), EUR)
		_, err := a.Add(eur)
		assert.Error(t, err)
		_, err = a.Subtract(eur)
		assert.Error(t, err)
	})
}

func TestMoneyRounding(t *testing.T) {
	t.Run("round half up to cents", func(t *testing.T) {
		m := MustMoney(decimal.NewFromFloat(10.005), USD)
		assert.Equal(t, "10.01", m.RoundCents().StringFixed(2))
	})

	t.Run("round down", func(t *testing.T) {
		m := MustMoney(decimal.NewFromFloat(10.004), USD)
		assert.Equal(t, "10.00", m.RoundCents().StringFixed(2))
	})

	t.Run("percentage rounds to cents", func(t *testing.T) {
		m := MustMoney(decimal.NewFromFloat(33.33), USD)
		pct := m.CalculatePercentage(decimal.NewFromInt(10))
		assert.Equal(t, "3.33", pct.StringFixed(2))
	})
}

func TestMoneyComparison(t *testing.T) {
	a := MustMoney(decimal.NewFromInt(5), USD)
	b := MustMoney(decimal.NewFromInt(8), USD)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, a.Equals(MustMoney(decimal.NewFromFloat(5.00), USD)))
	assert.False(t, a.Equals(MustMoney(decimal.NewFromInt(5), EUR)))
}

func TestMoneyJSON(t *testing.T) {
	m := MustMoney(decimal.NewFromFloat(42.50), AUD)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.5","currency":"AUD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	t.Run("scan string", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("19.95"))
		assert.Equal(t, "19.95", m.StringFixed(2))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scan nil yields zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("scan invalid", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan("not-a-number"))
	})
}

func TestCurrencyIsValid(t *testing.T) {
	assert.True(t, USD.IsValid())
	assert.True(t, JPY.IsValid())
	assert.False(t, Currency("XXX").IsValid())
}
