package datasource

import (
	"golang.org/x/time/rate"
)

// NewLimiter builds a token bucket allowing rps requests per second
// rps can be fractional for less than 1 request per second
// burst is the maximum burst size allowed and is at least 1
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
