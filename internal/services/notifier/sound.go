package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/interfaces"
)

// playTimeout bounds a single playback so a hung player cannot pile up goroutines
const playTimeout = 30 * time.Second

// Mode describes how an alert is made audible
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModePlayer   Mode = "player"
	ModeBell     Mode = "bell"
)

// runFunc executes a command and waits for it
type runFunc func(ctx context.Context, name string, args ...string) error

// Sound plays a notification file through the platform audio player
type Sound struct {
	file    string
	mode    Mode
	command []string
	out     io.Writer
	run     runFunc
	logger  arbor.ILogger
	wg      sync.WaitGroup
}

// Compile-time assertion
var _ interfaces.Notifier = (*Sound)(nil)

// NewSound resolves the playback mode from config.
// A missing sound file or an unavailable player disables playback, or falls back to the
// terminal bell written to out when config.Bell is set.
func NewSound(config common.SoundConfig, out io.Writer, logger arbor.ILogger) *Sound {
	return newSound(config, out, logger, exec.LookPath, runCommand, runtime.GOOS)
}

func newSound(config common.SoundConfig, out io.Writer, logger arbor.ILogger, lookPath func(string) (string, error), run runFunc, goos string) *Sound {
	if out == nil {
		out = os.Stdout
	}

	s := &Sound{
		file:   config.File,
		mode:   ModeDisabled,
		out:    out,
		run:    run,
		logger: logger,
	}

	if !config.Enabled {
		logger.Info().Msg("Sound notifications disabled in configuration")
		return s
	}

	if _, err := os.Stat(config.File); err != nil {
		logger.Warn().
			Str("file", config.File).
			Msg("Notification sound file not found")
		s.fallback(config.Bell)
		return s
	}

	command := playerCommand(config.Player, config.File, goos, lookPath)
	if len(command) == 0 {
		logger.Warn().
			Str("os", goos).
			Msg("No suitable audio player found")
		s.fallback(config.Bell)
		return s
	}

	s.mode = ModePlayer
	s.command = command
	logger.Info().
		Str("player", command[0]).
		Str("file", config.File).
		Msg("Notifier initialized")

	return s
}

func (s *Sound) fallback(bell bool) {
	if bell {
		s.mode = ModeBell
		s.logger.Info().Msg("Using terminal bell for notifications")
		return
	}
	s.mode = ModeDisabled
	s.logger.Warn().Msg("Sound notifications disabled")
}

// Enabled reports whether PlayAlert makes any sound
func (s *Sound) Enabled() bool {
	return s.mode != ModeDisabled
}

// Mode returns the resolved playback mode
func (s *Sound) Mode() Mode {
	return s.mode
}

// PlayAlert starts playback in the background and returns immediately.
// Failures are logged only.
func (s *Sound) PlayAlert() {
	switch s.mode {
	case ModeBell:
		if _, err := fmt.Fprint(s.out, "\a"); err != nil {
			s.logger.Debug().Err(err).Msg("Failed to ring terminal bell")
		}
	case ModePlayer:
		s.wg.Add(1)
		common.SafeGo(s.logger, "playAlert", func() {
			defer s.wg.Done()
			s.play()
		})
	}
}

func (s *Sound) play() {
	ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()

	if err := s.run(ctx, s.command[0], s.command[1:]...); err != nil {
		s.logger.Error().
			Err(err).
			Str("player", s.command[0]).
			Str("file", s.file).
			Msg("Failed to play notification sound")
		return
	}

	s.logger.Debug().Str("file", s.file).Msg("Notification sound played")
}

// Wait blocks until in-flight playbacks finish or timeout elapses.
// Returns false on timeout.
func (s *Sound) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// playerCommand builds the argv used to play file.
// An explicit player is split on whitespace and the file appended.
func playerCommand(player, file, goos string, lookPath func(string) (string, error)) []string {
	if fields := strings.Fields(player); len(fields) > 0 {
		if _, err := lookPath(fields[0]); err != nil {
			return nil
		}
		return append(fields, file)
	}

	switch goos {
	case "darwin":
		if _, err := lookPath("afplay"); err == nil {
			return []string{"afplay", file}
		}
	case "windows":
		if _, err := lookPath("powershell"); err == nil {
			script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(file, "'", "''"))
			return []string{"powershell", "-NoProfile", "-NonInteractive", "-Command", script}
		}
	default:
		for _, candidate := range []string{"paplay", "aplay", "pw-play", "afplay"} {
			if _, err := lookPath(candidate); err == nil {
				return []string{candidate, file}
			}
		}
	}

	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
