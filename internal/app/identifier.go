package app

import "strings"

// NormalizeIdentifier keeps only the digits of a phone number. A leading 00 stays part
// of the id.
func NormalizeIdentifier(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type countryInfo struct {
	ISO  string
	Name string
}

// Country is the result of calling-code detection.
type Country struct {
	CallingCode    string `json:"calling_code"`
	ISO            string `json:"iso"`
	Name           string `json:"name"`
	NationalNumber string `json:"national_number"`
}

// Flag renders the ISO code as a regional indicator emoji pair.
func (c Country) Flag() string {
	if len(c.ISO) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(c.ISO) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}

const maxCallingCodeLen = 4

// DetectCountry finds the longest calling code prefixing digits. An international 00
// prefix is skipped.
func DetectCountry(digits string) (Country, bool) {
	digits = strings.TrimPrefix(digits, "00")
	for n := min(maxCallingCodeLen, len(digits)); n > 0; n-- {
		if info, ok := callingCodes[digits[:n]]; ok {
			return Country{
				CallingCode:    digits[:n],
				ISO:            info.ISO,
				Name:           info.Name,
				NationalNumber: digits[n:],
			}, true
		}
	}
	return Country{}, false
}
