// Package money holds the amount handling shared by deals, contracts,
// invoices and the finance reports.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Amount is a monetary value that the console may send either as a JSON
// number or as a quoted string ("10000", "10,000.50").
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := Parse(s)
		if err != nil {
			return err
		}
		*a = Amount(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	if err := checkFinite(f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

// Float returns the amount as a float64.
func (a Amount) Float() float64 { return float64(a) }

// Parse converts a user-entered amount to a float. Empty input is zero.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if err := checkFinite(v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkFinite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid amount %v: must be a finite number", v)
	}
	return nil
}

var printer = message.NewPrinter(language.English)

// Format renders v with en-US digit grouping and at most two fraction
// digits. No currency symbol is added.
func Format(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
