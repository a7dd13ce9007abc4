// Package timezone pins every timestamp the service produces to the zone
// configured through APP_TIMEZONE (UTC when unset). Booking dates are calendar
// dates in that zone, so "in the future" checks use Today rather than Now.
package timezone
