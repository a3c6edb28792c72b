package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the settings that shape what gets shown
func PrintBanner(w io.Writer, config *Config, minImportance string, logger arbor.ILogger) {
	banner.Print("NewsWatch", GetVersion())

	line := strings.Repeat("*", 40)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "   NewsWatch active")
	fmt.Fprintf(w, "   Minimum importance: %s\n", minImportance)
	fmt.Fprintf(w, "   Schedule:           %s\n", config.Monitor.CronSchedule())
	fmt.Fprintln(w, "   Showing new Positive/Negative news, and Neutral news of high importance.")
	if path := LogFilePath(logger); path != "" {
		fmt.Fprintf(w, "   Logs:               %s\n", path)
	}
	fmt.Fprintln(w, "   Press CTRL+C to exit.")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)
}
