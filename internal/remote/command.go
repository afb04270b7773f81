// Package remote speaks the player's control vocabulary: one byte per
// command, written over the session socket.
package remote

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a single control byte understood by the player.
type Command byte

const (
	Play          Command = 0
	Pause         Command = 1
	PauseOrResume Command = 2
)

func (c Command) String() string {
	switch c {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case PauseOrResume:
		return "pause-or-resume"
	default:
		return fmt.Sprintf("command(%d)", byte(c))
	}
}

// Known reports whether the player acts on c.
func (c Command) Known() bool { return c <= PauseOrResume }

// ParseCommand accepts a command name (play, pause, toggle,
// pause-or-resume) or a decimal byte value.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "play":
		return Play, nil
	case "pause":
		return Pause, nil
	case "toggle", "pause-or-resume", "resume":
		return PauseOrResume, nil
	case "":
		return 0, fmt.Errorf("empty command")
	}

	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown command %q (want play, pause, toggle or 0-255)", s)
	}
	return Command(n), nil
}
