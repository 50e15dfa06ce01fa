package billing

import (
	"errors"
	"strconv"
	"strings"
)

const (
	gidPrefix = "gid://shopify/"

	ResourceRecurringCharge = "RecurringApplicationCharge"
	ResourceAppSubscription = "AppSubscription"
)

var ErrMalformedGID = errors.New("malformed shopify gid")

// ParseGID splits "gid://shopify/<Resource>/<numeric id>".
func ParseGID(gid string) (resource string, id int64, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(gid), gidPrefix)
	if !ok {
		return "", 0, ErrMalformedGID
	}
	resource, raw, ok := strings.Cut(rest, "/")
	if !ok || resource == "" || raw == "" {
		return "", 0, ErrMalformedGID
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return "", 0, ErrMalformedGID
		}
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, ErrMalformedGID
	}
	return resource, id, nil
}

// ChargeIDFromGID extracts the numeric id of a RecurringApplicationCharge GID.
func ChargeIDFromGID(gid string) (int64, error) {
	resource, id, err := ParseGID(gid)
	if err != nil {
		return 0, err
	}
	if resource != ResourceRecurringCharge {
		return 0, ErrMalformedGID
	}
	return id, nil
}

func ChargeGID(id int64) string {
	return gidPrefix + ResourceRecurringCharge + "/" + strconv.FormatInt(id, 10)
}
