package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const locationKey = "location"

// Location makes loc the calendar zone for the request. Plain dates and
// default periods are read in it.
func Location(loc *time.Location) gin.HandlerFunc {
	if loc == nil {
		loc = time.UTC
	}
	return func(c *gin.Context) {
		c.Set(locationKey, loc)
		c.Next()
	}
}

// LocationFrom returns the request's calendar zone, or UTC when none was set.
func LocationFrom(c *gin.Context) *time.Location {
	if v, ok := c.Get(locationKey); ok {
		if loc, ok := v.(*time.Location); ok {
			return loc
		}
	}
	return time.UTC
}
