package console

import (
	"fmt"
	"time"

	"papertrade/internal/application/port"
)

type Sink struct{}

func NewSink() port.Sink { return &Sink{} }

func (s *Sink) WriteLive(line string) error {
	fmt.Print(line) // no newline, overwrites via \r
	return nil
}

func (s *Sink) WriteSnapshot(ts time.Time, lines []string) error {
	fmt.Print("\n")
	fmt.Printf("%s portfolio snapshot\n", ts.Format("2006-01-02 15:04:05"))
	for _, line := range lines {
		fmt.Printf("  %s\n", line)
	}
	fmt.Print("\n")
	return nil
}

func (s *Sink) WriteLine(line string) error {
	fmt.Printf("\n%s\n", line)
	return nil
}

func (s *Sink) NewLine() error {
	fmt.Print("\n")
	return nil
}
