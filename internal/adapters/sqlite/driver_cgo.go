package sqlite

// Registers the "sqlite3" driver. Without cgo the driver still registers but
// fails at open time, so DriverModernc stays the default.
import _ "github.com/mattn/go-sqlite3"
