package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPeso(t *testing.T) {
	cases := map[int64]string{
		123450:    "₱1,234.50",
		0:         "₱0.00",
		5:         "₱0.05",
		100000000: "₱1,000,000.00",
		99999:     "₱999.99",
		-104000:   "-₱1,040.00",
	}
	for cents, want := range cases {
		assert.Equal(t, want, FormatPeso(cents), "cents=%d", cents)
	}
}

func TestFromDecimal(t *testing.T) {
	cents, err := FromDecimal(decimal.RequireFromString("1040"))
	require.NoError(t, err)
	assert.Equal(t, int64(104000), cents)

	cents, err = FromDecimal(decimal.RequireFromString("-1.5"))
	require.NoError(t, err)
	assert.Equal(t, int64(-150), cents)

	cents, err = FromDecimal(decimal.RequireFromString("0.005"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cents)

	cents, err = FromDecimal(decimal.RequireFromString("1000000000"))
	require.NoError(t, err)
	assert.Equal(t, MaxCents, cents)
}

func TestFromDecimalRejectsAmountsThatWouldWrap(t *testing.T) {
	for _, s := range []string{"184467440737096516.16", "1000000000.01", "-1000000000.01", "1e30"} {
		_, err := FromDecimal(decimal.RequireFromString(s))
		assert.ErrorIs(t, err, ErrOutOfRange, s)
	}
}

func TestParse(t *testing.T) {
	cents, err := Parse(" 180.25 ")
	require.NoError(t, err)
	assert.Equal(t, int64(18025), cents)

	_, err = Parse("abc")
	assert.Error(t, err)

	_, err = Parse("100000000000000000")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMul(t *testing.T) {
	got, err := Mul(18000, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(54000), got)

	got, err = Mul(-500, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-1000), got)

	_, err = Mul(MaxCents, 2)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = Mul(1<<40, 1<<30)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = Mul(100, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestAdd(t *testing.T) {
	got, err := Add(MaxCents-1, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxCents, got)

	_, err = Add(MaxCents, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = Add(1<<62, 1<<62)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestPriceUnmarshalDegradesToZero(t *testing.T) {
	var holder struct {
		Number    Price `json:"number"`
		Text      Price `json:"text"`
		Junk      Price `json:"junk"`
		Null      Price `json:"null"`
		Boolean   Price `json:"boolean"`
		Missing   Price `json:"missing"`
		Fractions Price `json:"fractions"`
	}
	body := `{"number": 180, "text": "500.50", "junk": "abc", "null": null, "boolean": true, "fractions": 0.1}`
	require.NoError(t, json.Unmarshal([]byte(body), &holder))

	assert.Equal(t, NewPrice(18000), holder.Number)
	assert.Equal(t, NewPrice(50050), holder.Text)
	assert.Equal(t, NewPrice(0), holder.Junk)
	assert.Equal(t, Price{}, holder.Null)
	assert.Equal(t, NewPrice(0), holder.Boolean)
	assert.Equal(t, Price{}, holder.Missing)
	assert.Equal(t, NewPrice(10), holder.Fractions)
}

func TestPriceUnmarshalOutOfRangeDegradesToZero(t *testing.T) {
	var holder struct {
		Number Price `json:"number"`
		Text   Price `json:"text"`
	}
	body := `{"number": 184467440737096516.16, "text": "100000000000000000"}`
	require.NoError(t, json.Unmarshal([]byte(body), &holder))

	assert.Equal(t, NewPrice(0), holder.Number)
	assert.Equal(t, NewPrice(0), holder.Text)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, int64(500), Coalesce(Price{}, NewPrice(500), NewPrice(700)))
	assert.Equal(t, int64(0), Coalesce(NewPrice(0), NewPrice(700)))
	assert.Equal(t, int64(0), Coalesce(Price{}, Price{}))
}

func TestPriceMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A Price `json:"a"`
		B Price `json:"b"`
	}{A: NewPrice(123450)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1234.5, "b": null}`, string(out))
}
