package messages

import (
	"fmt"
	"strings"
)

// Command is a discrete user intent produced by hotkey detection. Commands
// carry no payload and are consumed exactly once by the event loop.
type Command int

const (
	SelectArea Command = iota + 1
	ToggleOverlay
	ClearFields
	CopyTranslation
)

// Command names, used in configuration, logs and loopback delegation.
const (
	NameSelectArea      = "select-area"
	NameToggleOverlay   = "toggle-overlay"
	NameClearFields     = "clear-fields"
	NameCopyTranslation = "copy-translation"
)

// All lists every command in hotkey polling priority order.
var All = []Command{SelectArea, ToggleOverlay, ClearFields, CopyTranslation}

func (c Command) String() string {
	switch c {
	case SelectArea:
		return NameSelectArea
	case ToggleOverlay:
		return NameToggleOverlay
	case ClearFields:
		return NameClearFields
	case CopyTranslation:
		return NameCopyTranslation
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Valid reports whether c is one of the known commands.
func (c Command) Valid() bool {
	return c >= SelectArea && c <= CopyTranslation
}

// ParseCommand accepts the dashed names above as well as the snake_case
// spelling used by older settings files (select_area, toggle_overlay...).
func ParseCommand(s string) (Command, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "-")
	for _, c := range All {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}
