package db

import (
	"strconv"
	"strings"

	"grantmatch-backend-go/internal/models"
)

// NextGrantID returns one more than the largest numeric id in ids.
// Non-numeric ids are ignored.
func NextGrantID(ids []string) string {
	var max int64
	for _, id := range ids {
		if n, ok := models.NumericGrantID(id); ok && n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10)
}

// CouponKey is the lookup key for a coupon code.
func CouponKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// trackingPairKey identifies a (startup, grant) tracking pair.
func trackingPairKey(startupID, grantID string) string {
	return startupID + "|" + models.CanonicalGrantID(grantID)
}
