package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Denomination is the face value of a currency note.
type Denomination int

// Supported notes, largest first.
const (
	D500 Denomination = 500
	D200 Denomination = 200
	D100 Denomination = 100
	D50  Denomination = 50
	D20  Denomination = 20
	D10  Denomination = 10
	D5   Denomination = 5
	D2   Denomination = 2
	D1   Denomination = 1
)

// DenominationInfo pairs a note with its display label.
type DenominationInfo struct {
	Value Denomination
	Label string
}

// Denominations is the fixed denomination table in display order.
var Denominations = []DenominationInfo{
	{Value: D500, Label: "₹500"},
	{Value: D200, Label: "₹200"},
	{Value: D100, Label: "₹100"},
	{Value: D50, Label: "₹50"},
	{Value: D20, Label: "₹20"},
	{Value: D10, Label: "₹10"},
	{Value: D5, Label: "₹5"},
	{Value: D2, Label: "₹2"},
	{Value: D1, Label: "₹1"},
}

// IsValid reports whether d is one of the supported notes.
func (d Denomination) IsValid() bool {
	for _, info := range Denominations {
		if info.Value == d {
			return true
		}
	}
	return false
}

// Key returns the storage key of the note, e.g. "d500".
func (d Denomination) Key() string {
	return "d" + strconv.Itoa(int(d))
}

// Label returns the display label of the note.
func (d Denomination) Label() string {
	for _, info := range Denominations {
		if info.Value == d {
			return info.Label
		}
	}
	return "₹" + strconv.Itoa(int(d))
}

// MarshalText encodes the note as its storage key.
func (d Denomination) MarshalText() ([]byte, error) {
	return []byte(d.Key()), nil
}

// UnmarshalText decodes a storage key such as "d500".
func (d *Denomination) UnmarshalText(text []byte) error {
	parsed, err := ParseDenomination(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDenomination parses "d500" or "500" into a supported note.
func ParseDenomination(s string) (Denomination, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "d")
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDenomination, s)
	}

	d := Denomination(v)
	if !d.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDenomination, s)
	}

	return d, nil
}

// DenominationCount maps notes to counts. An absent note counts as zero.
type DenominationCount map[Denomination]int

// Total returns the sum of count × face value.
func (c DenominationCount) Total() decimal.Decimal {
	total := decimal.Zero
	for d, n := range c {
		total = total.Add(decimal.NewFromInt(int64(d)).Mul(decimal.NewFromInt(int64(n))))
	}
	return total
}

// Count returns the count for d, zero when absent.
func (c DenominationCount) Count(d Denomination) int {
	return c[d]
}

// IsEmpty reports whether no note has a non-zero count.
func (c DenominationCount) IsEmpty() bool {
	for _, n := range c {
		if n != 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy of the count. A nil count stays nil.
func (c DenominationCount) Clone() DenominationCount {
	if c == nil {
		return nil
	}
	out := make(DenominationCount, len(c))
	for d, n := range c {
		out[d] = n
	}
	return out
}

// Full returns a copy holding every supported note, missing ones as zero.
func (c DenominationCount) Full() DenominationCount {
	out := make(DenominationCount, len(Denominations))
	for _, info := range Denominations {
		out[info.Value] = c[info.Value]
	}
	return out
}

// Validate checks that every key is a supported note and no count is negative.
func (c DenominationCount) Validate() error {
	for d, n := range c {
		if !d.IsValid() {
			return fmt.Errorf("%w: %d", ErrInvalidDenomination, int(d))
		}
		if n < 0 {
			return fmt.Errorf("%w: %s count is negative", ErrInvalidDenomination, d.Key())
		}
		if n > maxNoteCount(d) {
			return fmt.Errorf("%w: %s count exceeds %d", ErrInvalidDenomination, d.Key(), maxNoteCount(d))
		}
	}
	return nil
}

// maxNoteCount is the largest count of d whose value stays within MaxAmount.
func maxNoteCount(d Denomination) int {
	limit, _ := decimal.NewFromString(MaxAmount)
	return int(limit.Div(decimal.NewFromInt(int64(d))).IntPart())
}
