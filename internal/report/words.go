package report

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords spells the whole-rupee part of amount using the Indian
// numbering system, e.g. "Rupees One Lakh Twenty Thousand Only". Paise are
// dropped.
func AmountInWords(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	n := amount.Abs().Floor().IntPart()

	words := strings.Join(strings.Fields(inWords(n)), " ")
	if words == "" {
		words = "Zero"
	}
	if negative && n > 0 {
		words = "Minus " + words
	}

	return "Rupees " + words + " Only"
}

func inWords(n int64) string {
	var b strings.Builder

	if n > 9999999 {
		b.WriteString(inWords(n / 10000000))
		b.WriteString(" Crore ")
		n %= 10000000
	}
	if n > 99999 {
		b.WriteString(inWords(n / 100000))
		b.WriteString(" Lakh ")
		n %= 100000
	}
	if n > 999 {
		b.WriteString(inWords(n / 1000))
		b.WriteString(" Thousand ")
		n %= 1000
	}
	if n > 99 {
		b.WriteString(inWords(n / 100))
		b.WriteString(" Hundred ")
		n %= 100
	}
	if n > 19 {
		b.WriteString(tens[n/10])
		b.WriteString(" ")
		b.WriteString(ones[n%10])
	} else {
		b.WriteString(ones[n])
	}

	return b.String()
}

// indianLocale groups digits as lakh and crore: 1,23,45,678.
var indianLocale = language.MustParse("en-IN")

// FormatAmount renders amount with Indian digit grouping and at most two
// fraction digits, e.g. 12,34,567.5.
func FormatAmount(amount decimal.Decimal) string {
	p := message.NewPrinter(indianLocale)
	return p.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}
