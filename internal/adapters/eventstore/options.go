package eventstore

type sqliteConfig struct {
	busyTimeout int
	synchronous string
}

// SQLiteOption customizes OpenSQLite behaviour.
type SQLiteOption func(*sqliteConfig)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds.
func WithBusyTimeout(ms int) SQLiteOption {
	return func(c *sqliteConfig) {
		if ms > 0 {
			c.busyTimeout = ms
		}
	}
}

// WithSynchronous sets PRAGMA synchronous (OFF, NORMAL, FULL).
func WithSynchronous(mode string) SQLiteOption {
	return func(c *sqliteConfig) {
		if mode != "" {
			c.synchronous = mode
		}
	}
}
