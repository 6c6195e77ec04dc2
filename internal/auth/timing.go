package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingConfig controls how long a failed login is held before responding
type TimingConfig struct {
	BaseDelay   time.Duration
	RandomDelay time.Duration
}

// TimingDelay pads failed logins so that an unknown email and a wrong password
// take about the same time to answer
type TimingDelay struct {
	config TimingConfig
	sleep  func(time.Duration)
}

// NewTimingDelay creates a TimingDelay; a zero config disables padding
func NewTimingDelay(config TimingConfig) *TimingDelay {
	return &TimingDelay{config: config, sleep: time.Sleep}
}

// cryptoRandDuration returns a uniform duration in [0, max) from crypto/rand
func cryptoRandDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return time.Duration(binary.BigEndian.Uint64(buf[:]) % uint64(max))
}

// Target returns the padded duration for one failure
func (td *TimingDelay) Target() time.Duration {
	return td.config.BaseDelay + cryptoRandDuration(td.config.RandomDelay)
}

// WaitFrom sleeps until at least Target() has elapsed since start.
// Successful logins are never delayed.
func (td *TimingDelay) WaitFrom(start time.Time, success bool) {
	if success || td == nil {
		return
	}

	target := td.Target()
	if target <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed < target {
		td.sleep(target - elapsed)
	}
}
