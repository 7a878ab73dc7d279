package ticker

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

var marketCapSuffixes = []struct {
	suffix     string
	multiplier decimal.Decimal
}{
	{"T", decimal.New(1, 12)},
	{"B", decimal.New(1, 9)},
	{"M", decimal.New(1, 6)},
	{"K", decimal.New(1, 3)},
}

var currencyReplacer = strings.NewReplacer("$", "", ",", "")

// ParseNumber parses a price-like string such as "$1,234.56". It never fails; unparsable input yields nil.
func ParseNumber(s string) *decimal.Decimal {
	if s == "" || s == notAvailable {
		return nil
	}
	return parseDecimal(strings.TrimSpace(currencyReplacer.Replace(s)))
}

// ParseMarketCap parses compact market caps like "$1.2T" or "$500M" as well as plain numbers.
func ParseMarketCap(s string) *decimal.Decimal {
	if s == "" || s == notAvailable {
		return nil
	}
	cleaned := strings.TrimSpace(currencyReplacer.Replace(s))
	for _, m := range marketCapSuffixes {
		if strings.HasSuffix(cleaned, m.suffix) {
			value := parseDecimal(strings.TrimSuffix(cleaned, m.suffix))
			if value == nil {
				return nil
			}
			scaled := value.Mul(m.multiplier)
			return &scaled
		}
	}
	return parseDecimal(cleaned)
}

// ParseInt parses a volume string such as "1,234,567".
func ParseInt(s string) *int64 {
	if s == "" || s == notAvailable {
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(strings.ReplaceAll(s, ",", "")), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDecimal(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
