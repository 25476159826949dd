package port

import "time"

// Sink renders terminal output for the trading session.
type Sink interface {
	// Live ticker line: overwrite the last line (no newline)
	WriteLive(line string) error
	// Snapshot block: append timestamped lines, leaving room for live updates
	WriteSnapshot(ts time.Time, lines []string) error
	// Plain line (trade confirmations, errors)
	WriteLine(line string) error
	// Normal newline (for logs)
	NewLine() error
}
