package layout

import (
	"fmt"
	"strings"
)

// Mode selects which kind of target a run produces
type Mode int

const (
	ModeArucoMarker Mode = iota
	ModeChessboardTile
	ModeChessboardSheet
)

var modeNames = map[Mode]string{
	ModeArucoMarker:     "aruco",
	ModeChessboardTile:  "chessboard-tile",
	ModeChessboardSheet: "chessboard",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names printed by Mode.String
func ParseMode(s string) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == want {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown pattern %q (use aruco, chessboard-tile or chessboard)", s)
}
