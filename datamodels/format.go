package datamodels

import (
	"strconv"
	"strings"
)

// FormatJobType turns "full-time" into "Full Time".
func FormatJobType(t JobType) string {
	words := strings.Fields(strings.ReplaceAll(string(t), "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FormatAmount groups the digits of n in thousands, e.g. 35000 -> "35,000".
func FormatAmount(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// CurrencySymbol returns the display symbol for an ISO currency code.
func CurrencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "INR":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return strings.ToUpper(code) + " "
	}
}

// SalaryRange formats the monthly salary band of j.
func (j Job) SalaryRange() string {
	sym := CurrencySymbol(j.SalaryCurrency)
	return sym + FormatAmount(j.SalaryMin) + " - " + sym + FormatAmount(j.SalaryMax)
}

// ExperienceRange formats the experience band of j in years.
func (j Job) ExperienceRange() string {
	return strconv.Itoa(j.ExperienceMin) + "-" + strconv.Itoa(j.ExperienceMax)
}
