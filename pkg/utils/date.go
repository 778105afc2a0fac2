package utils

import (
	"log"
	"time"
)

// TimeNowET returns the current time in the US market timezone.
func TimeNowET() time.Time {
	return time.Now().In(GetMarketTimeLocation())
}

// GetMarketTimeLocation returns the America/New_York location.
func GetMarketTimeLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}
