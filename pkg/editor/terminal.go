package editor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// EnableRawMode sets the terminal into raw mode
func EnableRawMode(fd int) (*unix.Termios, error) {
	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("get termios: %w", err)
	}

	newState := *oldState
	newState.Lflag &^= unix.ECHO | unix.ICANON
	newState.Lflag &^= unix.ISIG | unix.IEXTEN
	newState.Iflag &^= unix.IXON
	newState.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP
	newState.Oflag &^= unix.OPOST

	// Read() will block for at most 100ms (1/10th of a second)
	// If no key is pressed, it returns 0 bytes.
	newState.Cc[unix.VMIN] = 0
	newState.Cc[unix.VTIME] = 1

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &newState); err != nil {
		return nil, fmt.Errorf("set termios: %w", err)
	}

	return oldState, nil
}

// DisableRawMode resets the terminal to previous state
func DisableRawMode(fd int, prevState *unix.Termios) error {
	if prevState == nil {
		return nil
	}
	return unix.IoctlSetTermios(fd, unix.TCSETS, prevState)
}

// getWindowSize returns terminal dimensions
func getWindowSize(fd int) (rows, cols uint16) {
	winSize, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || winSize.Row == 0 || winSize.Col == 0 {
		return 24, 80 // default fallback
	}
	return winSize.Row, winSize.Col
}

// Screen clearing constants
const (
	Line        rune = '0'
	BelowCursor rune = '1'
	Screen      rune = '2'
)

// ClearScreen clears the screen
func ClearScreen(element rune) {
	fmt.Fprintf(out, "\x1b[%cJ", element)
}

// MoveCursorTopLeft moves cursor to top left
func MoveCursorTopLeft() {
	fmt.Fprint(out, "\x1b[H")
}
