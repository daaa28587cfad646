package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/core/apperror"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		wantCode string
	}{
		{name: "dot separator", raw: "1500.50", want: "1500.5"},
		{name: "comma separator", raw: "1500,50", want: "1500.5"},
		{name: "integer", raw: " 42 ", want: "42"},
		{name: "maximum", raw: "999999999.99", want: "999999999.99"},
		{name: "zero", raw: "0", wantCode: apperror.CodeValidation},
		{name: "negative", raw: "-10", wantCode: apperror.CodeValidation},
		{name: "too large", raw: "1000000000", wantCode: apperror.CodeValidation},
		{name: "three decimals", raw: "10.005", wantCode: apperror.CodeValidation},
		{name: "trailing zeros allowed", raw: "10.500", want: "10.5"},
		{name: "not a number", raw: "abc", wantCode: apperror.CodeFormat},
		{name: "empty", raw: "", wantCode: apperror.CodeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperror.IsCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestSumAmounts(t *testing.T) {
	total := SumAmounts(MustAmount("0.10"), MustAmount("0.20"), MustAmount("100"))
	assert.True(t, total.Equal(MustAmount("100.30")))
	assert.True(t, SumAmounts().IsZero())
}
