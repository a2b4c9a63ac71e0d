package qfilter

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	genre := Enum("Action", "Drama")

	tests := []struct {
		name    string
		literal string
		target  FieldType
		want    any
		kind    ErrorKind
	}{
		{name: "enum member", literal: "Drama", target: genre, want: EnumValue{Name: "Drama", Ordinal: 1}},
		{name: "enum is case sensitive", literal: "drama", target: genre, kind: KindUnknownEnumMember},
		{name: "uuid", literal: "5c1f9e4a-3b7d-4a9a-8b8e-2f1d6c0a9e11", target: UUID(), want: uuid.MustParse("5c1f9e4a-3b7d-4a9a-8b8e-2f1d6c0a9e11")},
		{name: "bad uuid", literal: "5c1f9e4a", target: UUID(), kind: KindMalformedLiteral},
		{name: "int16", literal: "32767", target: Int16(), want: int64(32767)},
		{name: "int16 overflow", literal: "32768", target: Int16(), kind: KindLiteralOutOfRange},
		{name: "int8 underflow", literal: "-129", target: Int8(), kind: KindLiteralOutOfRange},
		{name: "int malformed", literal: "12a", target: Int32(), kind: KindMalformedLiteral},
		{name: "int rejects fraction", literal: "1.5", target: Int64(), kind: KindMalformedLiteral},
		{name: "float", literal: "7.25", target: Float(), want: 7.25},
		{name: "float malformed", literal: "seven", target: Float(), kind: KindMalformedLiteral},
		{name: "float NaN", literal: "NaN", target: Float(), kind: KindMalformedLiteral},
		{name: "float Inf", literal: "-Inf", target: Float(), kind: KindMalformedLiteral},
		{name: "float hex", literal: "0x1p-2", target: Float(), kind: KindMalformedLiteral},
		{name: "float overflow", literal: "1e400", target: Float(), kind: KindLiteralOutOfRange},
		{name: "bool", literal: "true", target: Bool(), want: true},
		{name: "bool malformed", literal: "yes", target: Bool(), kind: KindMalformedLiteral},
		{name: "bool ignores case", literal: "TRUE", target: Bool(), want: true},
		{name: "bool rejects digits", literal: "1", target: Bool(), kind: KindMalformedLiteral},
		{name: "bool rejects letters", literal: "t", target: Bool(), kind: KindMalformedLiteral},
		{name: "text passes through", literal: "Hello World", target: Text(), want: "Hello World"},
		{name: "date", literal: "2021-12-15", target: Time(), want: time.Date(2021, 12, 15, 0, 0, 0, 0, time.UTC)},
		{name: "date time", literal: "2021-12-15T10:30:00Z", target: Time(), want: time.Date(2021, 12, 15, 10, 30, 0, 0, time.UTC)},
		{name: "date malformed", literal: "15th of December", target: Time(), kind: KindMalformedLiteral},
		{name: "record takes no literal", literal: "x", target: Record(), kind: KindMalformedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, err := Coerce(tt.literal, tt.target)
			if tt.kind != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.kind, KindOf(err))
				assert.Nil(t, lit.Value, "failed coercion must not produce a value")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, lit.Value)
			assert.False(t, lit.Nullable)
		})
	}
}

func TestCoerceBigInt(t *testing.T) {
	lit, err := Coerce("170141183460469231731687303715884105727", BigInt())
	require.NoError(t, err)
	assert.Equal(t, 0, lit.Value.(*big.Int).Cmp(maxInt128))

	_, err = Coerce("170141183460469231731687303715884105728", BigInt())
	assert.ErrorIs(t, err, ErrLiteralOutOfRange)

	_, err = Coerce("-170141183460469231731687303715884105729", BigInt())
	assert.ErrorIs(t, err, ErrLiteralOutOfRange)

	_, err = Coerce("12e3", BigInt())
	assert.ErrorIs(t, err, ErrMalformedLiteral)
}

func TestCoerceNullable(t *testing.T) {
	lit, err := Coerce("42", Nullable(Int32()))
	require.NoError(t, err)
	assert.True(t, lit.Nullable)
	assert.True(t, lit.Type.Nullable)
	assert.Equal(t, int64(42), lit.Value)

	_, err = Coerce("abc", Nullable(Int32()))
	assert.ErrorIs(t, err, ErrMalformedLiteral)
}

func TestLiteralRoundTrip(t *testing.T) {
	cases := []struct {
		literal string
		target  FieldType
	}{
		{"-128", Int8()},
		{"9223372036854775807", Int64()},
		{"-170141183460469231731687303715884105728", BigInt()},
		{"0.1", Float()},
		{"1e-300", Float()},
		{"false", Bool()},
		{"True", Bool()},
		{"-2.5E+10", Float()},
		{"5C1F9E4A-3B7D-4A9A-8B8E-2F1D6C0A9E11", UUID()},
		{"Comedy", Enum("Action", "Comedy")},
		{"2022-03-01T08:15:30.5Z", Time()},
		{"  spaced text ", Text()},
		{"17", Nullable(Int16())},
	}
	for _, c := range cases {
		t.Run(c.target.String()+"/"+c.literal, func(t *testing.T) {
			first, err := Coerce(c.literal, c.target)
			require.NoError(t, err)
			second, err := Coerce(first.String(), c.target)
			require.NoError(t, err)
			assert.True(t, first.Equal(second), "%v != %v", first.Value, second.Value)
		})
	}
}
