package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RiskUpdatesChannel returns the Redis PubSub channel carrying every risk change.
func (r *CacheKeyStruct) RiskUpdatesChannel() string {
	return "risk:updates"
}

// StudentRiskChannel returns the Redis PubSub channel for a single student's risk changes.
func (r *CacheKeyStruct) StudentRiskChannel(studentID string) string {
	return fmt.Sprintf("student:%s:risk", studentID)
}

// RescanLockKey returns the key guarding against overlapping scheduled re-scans.
func (r *CacheKeyStruct) RescanLockKey() string {
	return "risk:rescan:lock"
}

var CacheKey = NewCacheKeyStruct()
