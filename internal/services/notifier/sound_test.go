package notifier

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
)

// recorder captures commands instead of running them
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func lookPathFor(available ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func soundFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notification.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))
	return path
}

func TestNewSound_ModeResolution(t *testing.T) {
	file := soundFile(t)
	missing := filepath.Join(t.TempDir(), "missing.wav")

	tests := []struct {
		name      string
		config    common.SoundConfig
		available []string
		goos      string
		want      Mode
	}{
		{"disabled in config", common.SoundConfig{Enabled: false, File: file, Bell: true}, []string{"paplay"}, "linux", ModeDisabled},
		{"linux player", common.SoundConfig{Enabled: true, File: file}, []string{"aplay"}, "linux", ModePlayer},
		{"mac player", common.SoundConfig{Enabled: true, File: file}, []string{"afplay"}, "darwin", ModePlayer},
		{"windows player", common.SoundConfig{Enabled: true, File: file}, []string{"powershell"}, "windows", ModePlayer},
		{"missing file", common.SoundConfig{Enabled: true, File: missing}, []string{"paplay"}, "linux", ModeDisabled},
		{"missing file with bell", common.SoundConfig{Enabled: true, File: missing, Bell: true}, []string{"paplay"}, "linux", ModeBell},
		{"no player", common.SoundConfig{Enabled: true, File: file}, nil, "linux", ModeDisabled},
		{"no player with bell", common.SoundConfig{Enabled: true, File: file, Bell: true}, nil, "linux", ModeBell},
		{"explicit player missing", common.SoundConfig{Enabled: true, File: file, Player: "mpv"}, []string{"paplay"}, "linux", ModeDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			sound := newSound(tt.config, &bytes.Buffer{}, arbor.NewLogger(), lookPathFor(tt.available...), rec.run, tt.goos)
			assert.Equal(t, tt.want, sound.Mode())
			assert.Equal(t, tt.want != ModeDisabled, sound.Enabled())
		})
	}
}

func TestPlayerCommand(t *testing.T) {
	tests := []struct {
		name      string
		player    string
		goos      string
		available []string
		want      []string
	}{
		{"linux prefers paplay", "", "linux", []string{"aplay", "paplay"}, []string{"paplay", "a.wav"}},
		{"linux falls back to aplay", "", "linux", []string{"aplay"}, []string{"aplay", "a.wav"}},
		{"darwin", "", "darwin", []string{"afplay"}, []string{"afplay", "a.wav"}},
		{"explicit with args", "mpv --no-video", "linux", []string{"mpv"}, []string{"mpv", "--no-video", "a.wav"}},
		{"nothing available", "", "linux", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, playerCommand(tt.player, "a.wav", tt.goos, lookPathFor(tt.available...)))
		})
	}

	t.Run("windows quotes path", func(t *testing.T) {
		cmd := playerCommand("", `C:\it's.wav`, "windows", lookPathFor("powershell"))
		require.Len(t, cmd, 5)
		assert.Equal(t, "powershell", cmd[0])
		assert.Contains(t, cmd[4], `'C:\it''s.wav'`)
	})
}

func TestPlayAlert_Player(t *testing.T) {
	file := soundFile(t)
	rec := &recorder{}
	sound := newSound(common.SoundConfig{Enabled: true, File: file}, &bytes.Buffer{}, arbor.NewLogger(), lookPathFor("paplay"), rec.run, "linux")

	sound.PlayAlert()
	sound.PlayAlert()
	require.True(t, sound.Wait(time.Second))

	assert.Equal(t, 2, rec.count())
	assert.Equal(t, []string{"paplay", file}, rec.calls[0])
}

func TestPlayAlert_FailureIsSwallowed(t *testing.T) {
	file := soundFile(t)
	rec := &recorder{err: errors.New("device busy")}
	sound := newSound(common.SoundConfig{Enabled: true, File: file}, &bytes.Buffer{}, arbor.NewLogger(), lookPathFor("aplay"), rec.run, "linux")

	assert.NotPanics(t, sound.PlayAlert)
	require.True(t, sound.Wait(time.Second))
	assert.Equal(t, 1, rec.count())
}

func TestPlayAlert_Bell(t *testing.T) {
	out := &bytes.Buffer{}
	sound := newSound(common.SoundConfig{Enabled: true, File: "missing.wav", Bell: true}, out, arbor.NewLogger(), lookPathFor(), (&recorder{}).run, "linux")

	sound.PlayAlert()
	assert.Equal(t, "\a", out.String())
}

func TestPlayAlert_DisabledIsSilent(t *testing.T) {
	out := &bytes.Buffer{}
	rec := &recorder{}
	sound := newSound(common.SoundConfig{Enabled: false}, out, arbor.NewLogger(), lookPathFor("paplay"), rec.run, "linux")

	sound.PlayAlert()
	assert.True(t, sound.Wait(time.Second))
	assert.Empty(t, out.String())
	assert.Equal(t, 0, rec.count())
}
