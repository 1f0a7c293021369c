package timeutil

import "time"

// GatewayTimestampLayout is the request timestamp format: YYYYMMDDhhmmss
const GatewayTimestampLayout = "20060102150405"

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// GatewayTimestamp renders t in the gateway's timestamp format, in UTC
func GatewayTimestamp(t time.Time) string {
	return t.UTC().Format(GatewayTimestampLayout)
}

// ParseGatewayTimestamp parses a gateway timestamp as UTC
func ParseGatewayTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(GatewayTimestampLayout, value, time.UTC)
}
