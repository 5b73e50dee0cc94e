// File: utils/constants.go
package utils

import "time"

// LockKeyPrefix namespaces admission lock keys in Redis.
const LockKeyPrefix = "staybook:lock:"

// StoreTimeout bounds a single repository round trip.
const StoreTimeout = 5 * time.Second
