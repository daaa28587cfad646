// Package checkdigit validates the Argentine tax identifier (CUIT/CUIL) and the
// bank account code (CBU). Validated values are distinct types with unexported
// state: the only way to obtain one is through a successful validation, and
// every decode path (SQL scan, JSON/text unmarshal) validates again.
package checkdigit

import (
	"strings"
)

var taxIDWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidTaxIDPrefixes lists the accepted leading pairs (person and company kinds).
var ValidTaxIDPrefixes = []string{"20", "23", "24", "27", "30", "33", "34"}

var (
	accountBlock1Weights = [7]int{7, 1, 3, 9, 7, 1, 3}
	accountBlock2Weights = [13]int{3, 9, 7, 1, 3, 9, 7, 1, 3, 9, 7, 1, 3}
)

const (
	TaxIDLength       = 11
	AccountCodeLength = 22
)

// clean strips the separators users type between digit groups.
func clean(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '.', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// weightedSum multiplies digits pairwise with weights.
func weightedSum(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	return sum
}

// taxIDCheckDigit returns the expected 11th digit for the first ten.
func taxIDCheckDigit(digits string) int {
	expected := 11 - weightedSum(digits, taxIDWeights[:])%11
	switch expected {
	case 11:
		return 0
	case 10:
		return 9
	}
	return expected
}

func mod10CheckDigit(digits string, weights []int) int {
	return (10 - weightedSum(digits, weights)%10) % 10
}
