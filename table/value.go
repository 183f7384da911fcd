package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatValue renders a cell value as text. Missing values render empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// Normalize converts v to the Go representation used for columns of type
// typ: int32, int64, decimal.Decimal, float64, bool, time.Time or string.
// TypeObject values are returned unchanged.
func Normalize(v any, typ Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case TypeString:
		return FormatValue(v), nil
	case TypeInt32:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d overflows int32", n)
		}
		return int32(n), nil
	case TypeInt64:
		return toInt64(v)
	case TypeDecimal:
		switch x := v.(type) {
		case decimal.Decimal:
			return x, nil
		case float64:
			return decimal.NewFromFloat(x), nil
		case float32:
			return decimal.NewFromFloat32(x), nil
		case int32:
			return decimal.NewFromInt32(x), nil
		case int64:
			return decimal.NewFromInt(x), nil
		case int:
			return decimal.NewFromInt(int64(x)), nil
		}
		return decimal.NewFromString(strings.TrimSpace(FormatValue(v)))
	case TypeFloat64:
		switch x := v.(type) {
		case float64:
			return x, nil
		case decimal.Decimal:
			return x.InexactFloat64(), nil
		}
		return strconv.ParseFloat(strings.TrimSpace(FormatValue(v)), 64)
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return strconv.ParseBool(strings.TrimSpace(FormatValue(v)))
	case TypeDateTime:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
		return ParseTime(FormatValue(v))
	}
	return v, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("value %v is not integral", x)
		}
		return int64(x), nil
	case decimal.Decimal:
		if !x.IsInteger() {
			return 0, fmt.Errorf("value %s is not integral", x)
		}
		return x.IntPart(), nil
	}
	return strconv.ParseInt(strings.TrimSpace(FormatValue(v)), 10, 64)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the date/time layouts accepted in text cells.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// StripInvalidXMLChars removes the control characters that may not appear
// in XML text: 0x00-0x08, 0x0B, 0x0C and 0x0E-0x1F.
func StripInvalidXMLChars(s string) string {
	if strings.IndexFunc(s, isInvalidXMLChar) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isInvalidXMLChar(r) {
			return -1
		}
		return r
	}, s)
}

func isInvalidXMLChar(r rune) bool {
	return r <= 0x08 || r == 0x0B || r == 0x0C || (r >= 0x0E && r <= 0x1F)
}
