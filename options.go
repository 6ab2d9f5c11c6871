package ecc508

import "time"

type config struct {
	delay   func(time.Duration)
	retries int
}

func defaultConfig() config {
	return config{
		delay:   time.Sleep,
		retries: 20,
	}
}

// Option configures a Device handle at Open time.
type Option func(*config)

// WithDelayFunc replaces the blocking wait used between sending a command
// and reading its response. The default is time.Sleep; tests substitute a
// no-op so they do not have to sit out the device's real execution times.
func WithDelayFunc(delay func(time.Duration)) Option {
	return func(c *config) {
		if delay != nil {
			c.delay = delay
		}
	}
}

// WithRetries sets how many times a response read is re-attempted while
// the device is still working on a command. The default of 20 covers the
// device's worst case.
func WithRetries(retries int) Option {
	return func(c *config) {
		if retries >= 0 {
			c.retries = retries
		}
	}
}
