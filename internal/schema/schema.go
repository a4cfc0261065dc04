// Package schema validates raw request payloads before they reach
// storage. Each payload type enumerates its own rule set; Validate
// returns a field-keyed error report instead of failing on the first
// problem. In partial mode only supplied fields are checked, so PUT
// handlers can apply sparse updates.
package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldErrors maps a field name to what is wrong with it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// orNil returns the map when it has entries, otherwise nil, so callers
// can test the result against nil.
func (fe FieldErrors) orNil() FieldErrors {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = time.RFC3339
)

func checkRequired(fe FieldErrors, field string, val *string, partial bool) {
	if val == nil {
		if !partial {
			fe[field] = "is required"
		}
		return
	}
	if strings.TrimSpace(*val) == "" {
		fe[field] = "must not be blank"
	}
}

func checkMaxLen(fe FieldErrors, field string, val *string, max int) {
	if _, seen := fe[field]; seen {
		return
	}
	if val != nil && len(*val) > max {
		fe[field] = fmt.Sprintf("must be at most %d characters", max)
	}
}

func checkMinLen(fe FieldErrors, field string, val *string, min int) {
	if _, seen := fe[field]; seen {
		return
	}
	if val != nil && len(*val) < min {
		fe[field] = fmt.Sprintf("must be at least %d characters", min)
	}
}

func checkOneOf(fe FieldErrors, field string, val *string, allowed []string) {
	if val == nil {
		return
	}
	for _, a := range allowed {
		if *val == a {
			return
		}
	}
	fe[field] = "must be one of: " + strings.Join(allowed, ", ")
}

func checkEmail(fe FieldErrors, field string, val *string) {
	if _, seen := fe[field]; seen {
		return
	}
	if val == nil || *val == "" {
		return
	}
	at := strings.Index(*val, "@")
	if at <= 0 || at == len(*val)-1 || !strings.Contains((*val)[at:], ".") {
		fe[field] = "must be a valid email address"
	}
}

func checkDate(fe FieldErrors, field string, val *string) {
	if val == nil || *val == "" {
		return
	}
	if _, err := time.Parse(dateLayout, *val); err != nil {
		fe[field] = "must be a date in YYYY-MM-DD format"
	}
}

func checkDatetime(fe FieldErrors, field string, val *string, partial bool) {
	if val == nil {
		if !partial {
			fe[field] = "is required"
		}
		return
	}
	if _, err := time.Parse(datetimeLayout, *val); err != nil {
		fe[field] = "must be an RFC 3339 timestamp"
	}
}

func checkMin(fe FieldErrors, field string, val *int64, min int64, partial bool) {
	if val == nil {
		if !partial {
			fe[field] = "is required"
		}
		return
	}
	if *val < min {
		fe[field] = fmt.Sprintf("must be at least %d", min)
	}
}

// checkMoney enforces exact two-place decimal money: no negative
// values and no excess precision. Values like 4.999 are rejected, not
// rounded.
func checkMoney(fe FieldErrors, field string, val *decimal.Decimal, partial bool) {
	if val == nil {
		if !partial {
			fe[field] = "is required"
		}
		return
	}
	if val.IsNegative() {
		fe[field] = "must not be negative"
		return
	}
	if val.Exponent() < -2 {
		fe[field] = "must have at most 2 decimal places"
	}
}
