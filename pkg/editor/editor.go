package editor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jellexet/valuebuf/pkg/buffer"
	"github.com/jellexet/valuebuf/pkg/pool"
)

// Action represents an editing action for undo/redo
type Action struct {
	actionType string // "insert" or "delete"
	position   int    // byte offset in the document
	content    string // content that was inserted or deleted
}

// apply performs the action on buf.
func (a Action) apply(buf buffer.Buffer) error {
	if a.actionType == "insert" {
		return buf.Insert(a.position, a.content)
	}
	return buf.Remove(a.position, len(a.content))
}

// revert undoes the action on buf.
func (a Action) revert(buf buffer.Buffer) error {
	if a.actionType == "insert" {
		return buf.Remove(a.position, len(a.content))
	}
	return buf.Insert(a.position, a.content)
}

// Session contains the information to display the text, undo-redo and edit the text
type Session struct {
	text            *buffer.Builder
	undoStack       []Action
	redoStack       []Action
	cursorIdx       int // byte offset in the document
	cursorRow       int // 1-indexed row (screen position)
	cursorCol       int // 1-indexed column (screen position)
	screenRows      uint16
	screenCols      uint16
	filename        string // Name of the file being edited
	statusMessage   string // For showing messages like "Not found"
	lastSearchQuery string // For "find next"
	dirty           bool   // unsaved changes
}

// noName is the file name of a buffer that was never saved.
const noName = "[No Name]"

var (
	// The session global variable
	session Session

	logger          *zap.Logger   = zap.NewNop()
	provider        pool.Provider = pool.Default
	initialCapacity int           = buffer.DefaultCapacity
	out             io.Writer     = os.Stdout
)

// Configure sets the logger, the storage provider and the initial document
// capacity used by new sessions. Nil arguments and a non-positive capacity
// keep the current values.
func Configure(l *zap.Logger, p pool.Provider, capacity int) {
	if l != nil {
		logger = l
	}
	if p != nil {
		provider = p
	}
	if capacity > 0 {
		initialCapacity = capacity
	}
}

// newDocument returns a builder holding content with room for at least
// initialCapacity bytes.
func newDocument(content string) *buffer.Builder {
	b, err := buffer.NewSize(max(initialCapacity, len(content)), buffer.WithProvider(provider))
	if err != nil {
		// capacity is never negative here
		panic(err)
	}
	b.Append(content)
	return b
}

// Control character constants
const (
	CtrlF byte = 0x06
	CtrlN byte = 0x0E
	CtrlQ byte = 0x11
	CtrlR byte = 0x12
	CtrlS byte = 0x13
	CtrlZ byte = 0x1A
	Esc   byte = 0x1B
)

// Special character constants
const (
	Return    byte = 0x0D
	Backspace byte = 0x7F
)

// Arrow key constants
const (
	ArrowUp    = 1000
	ArrowDown  = 1001
	ArrowLeft  = 1002
	ArrowRight = 1003
)

// InitSession starts a new session holding initialContent.
// The previous session's document is disposed.
func InitSession(fd int, filename string, initialContent string) {
	CloseSession()

	if filename == "" {
		filename = noName
	}
	session = Session{
		text:      newDocument(initialContent),
		filename:  filename,
		cursorRow: 1,
		cursorCol: 1,
	}
	session.screenRows, session.screenCols = getWindowSize(fd)
	updateCursorPosition()
}

// LoadFile starts a new session with the content of filename.
// A missing file starts an empty session that saves to filename.
func LoadFile(fd int, filename string) error {
	InitSession(fd, filename, "")

	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("Editing new file", zap.String("file_path", filename))
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	n, err := session.text.ReadFrom(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	logger.Debug("Loaded file",
		zap.String("file_path", filename),
		zap.Int64("byte_count", n),
		zap.Int("capacity", session.text.Cap()))

	updateCursorPosition()
	return nil
}

// CloseSession releases the session's document storage.
func CloseSession() {
	if session.text != nil {
		session.text.Dispose()
		session.text = nil
	}
}

// editorReadKey reads a key from stdin, intelligently handling multi-byte
// ANSI escape sequences. This is necessary because special keys, like the
// arrow keys, are not sent as a single byte.
//
// For example:
//   - Arrow Up    is sent as 3 bytes: \x1b [ A
//   - Arrow Down  is sent as 3 bytes: \x1b [ B
//   - ...and so on.
//
// This function reads the first byte. If it's '\x1b' (Esc), it uses the
// non-blocking callback (which respects the VMIN/VTIME timeout) to
// check for the subsequent bytes ('[' and 'A'/'B'/'C'/'D').
func editorReadKey(callback func() byte) int {
	c := callback()

	// If we time out (c == 0), just return 0
	if c == 0 {
		return 0
	}

	if c != Esc {
		return int(c)
	}

	seq1 := callback()
	if seq1 == 0 {
		return int(Esc) // Just an Esc key was pressed
	}

	seq2 := callback()
	if seq2 == 0 {
		return int(Esc) // Incomplete sequence, treat as Esc
	}

	if seq1 == '[' {
		switch seq2 {
		case 'A':
			return ArrowUp
		case 'B':
			return ArrowDown
		case 'C':
			return ArrowRight
		case 'D':
			return ArrowLeft
		}
	}

	return int(Esc)
}

// ProcessKeypress handles keyboard input and updates editor state
func ProcessKeypress(fd int, callback func() (key byte)) {
	refreshScreen(fd)

	for {
		key := editorReadKey(callback)

		if key == 0 {
			continue
		}

		if key >= ArrowUp {
			editorMoveCursor(key)
			refreshScreen(fd)
			continue
		}

		c := byte(key)
		switch c {
		case CtrlQ:
			return
		case CtrlF:
			handleSearch(fd, callback)
		case CtrlR:
			handleRedo()
		case CtrlS:
			handleSave(callback)
		case CtrlZ:
			handleUndo()
		case Backspace:
			handleBackspace()
		case Return:
			handleInsert("\n")
		default:
			// Regular character
			if c < 32 || c >= 127 {
				continue
			}
			handleInsert(string(c))
		}
		refreshScreen(fd)
	}
}

// editorMoveCursor moves the cursor based on arrow key
func editorMoveCursor(key int) {
	lines := getLines()
	currentLine := ""
	if session.cursorRow > 0 && session.cursorRow <= len(lines) {
		currentLine = lines[session.cursorRow-1]
	}

	switch key {
	case ArrowLeft:
		if session.cursorCol > 1 {
			session.cursorCol--
			session.cursorIdx--
		} else if session.cursorRow > 1 {
			// Move to end of previous line
			session.cursorRow--
			prevLine := lines[session.cursorRow-1]
			session.cursorCol = len(prevLine) + 1
			session.cursorIdx--
		}

	case ArrowRight:
		if session.cursorCol <= len(currentLine) {
			session.cursorCol++
			session.cursorIdx++
		} else if session.cursorRow < len(lines) {
			// Move to start of next line
			session.cursorRow++
			session.cursorCol = 1
			session.cursorIdx++
		}

	case ArrowUp:
		if session.cursorRow > 1 {
			session.cursorRow--
			prevLine := lines[session.cursorRow-1]
			if session.cursorCol > len(prevLine)+1 {
				session.cursorCol = len(prevLine) + 1
			}
			session.cursorIdx = getLineStartIndex(session.cursorRow) + session.cursorCol - 1
		}

	case ArrowDown:
		if session.cursorRow < len(lines) {
			session.cursorRow++
			nextLine := lines[session.cursorRow-1]
			if session.cursorCol > len(nextLine)+1 {
				session.cursorCol = len(nextLine) + 1
			}
			session.cursorIdx = getLineStartIndex(session.cursorRow) + session.cursorCol - 1
		}
	}

	session.cursorIdx = min(max(session.cursorIdx, 0), session.text.Len())
}

// record pushes a fresh action and clears the redo stack.
func record(a Action) {
	session.undoStack = append(session.undoStack, a)
	session.redoStack = session.redoStack[:0]
	session.dirty = true
}

// handleInsert inserts s at the cursor position
func handleInsert(s string) {
	if err := session.text.Insert(session.cursorIdx, s); err != nil {
		logger.Warn("Insert failed", zap.Int("cursor", session.cursorIdx), zap.Error(err))
		return
	}
	record(Action{actionType: "insert", position: session.cursorIdx, content: s})

	session.cursorIdx += len(s)
	updateCursorPosition()
}

// handleBackspace deletes the byte before the cursor
func handleBackspace() {
	if session.cursorIdx == 0 {
		return
	}

	deleted, err := session.text.Substring(session.cursorIdx-1, 1)
	if err != nil {
		logger.Warn("Backspace failed", zap.Int("cursor", session.cursorIdx), zap.Error(err))
		return
	}
	if err := session.text.Remove(session.cursorIdx-1, 1); err != nil {
		logger.Warn("Backspace failed", zap.Int("cursor", session.cursorIdx), zap.Error(err))
		return
	}
	record(Action{actionType: "delete", position: session.cursorIdx - 1, content: deleted})

	session.cursorIdx--
	updateCursorPosition()
}

// cursorAfter returns where the cursor goes once a has been applied.
func cursorAfter(a Action, applied bool) int {
	if applied == (a.actionType == "insert") {
		return a.position + len(a.content)
	}
	return a.position
}

// handleUndo undoes the last action
func handleUndo() {
	if len(session.undoStack) == 0 {
		session.statusMessage = "Nothing to undo"
		return
	}

	action := session.undoStack[len(session.undoStack)-1]
	session.undoStack = session.undoStack[:len(session.undoStack)-1]

	if err := action.revert(session.text); err != nil {
		logger.Warn("Undo failed", zap.String("action", action.actionType), zap.Error(err))
		return
	}
	session.cursorIdx = cursorAfter(action, false)
	session.redoStack = append(session.redoStack, action)
	session.dirty = true
	updateCursorPosition()
}

// handleRedo redoes the last undone action
func handleRedo() {
	if len(session.redoStack) == 0 {
		session.statusMessage = "Nothing to redo"
		return
	}

	action := session.redoStack[len(session.redoStack)-1]
	session.redoStack = session.redoStack[:len(session.redoStack)-1]

	if err := action.apply(session.text); err != nil {
		logger.Warn("Redo failed", zap.String("action", action.actionType), zap.Error(err))
		return
	}
	session.cursorIdx = cursorAfter(action, true)
	session.undoStack = append(session.undoStack, action)
	session.dirty = true
	updateCursorPosition()
}

// Saves the current buffer content to a file.
func handleSave(callback func() byte) {
	if session.filename == noName {
		filename := editorDrawPrompt("Save as (Esc to cancel):", callback)
		if filename == "" {
			session.statusMessage = "Save canceled"
			return
		}
		session.filename = filename
	}

	if err := writeFile(session.filename); err != nil {
		logger.Error("Failed to save file", zap.String("file_path", session.filename), zap.Error(err))
		session.statusMessage = fmt.Sprintf("Error saving file: %v", err)
		return
	}

	session.dirty = false
	logger.Info("Saved file", zap.String("file_path", session.filename), zap.Int("byte_count", session.text.Len()))
	session.statusMessage = fmt.Sprintf("Saved %d bytes to %s", session.text.Len(), session.filename)
}

// writeFile streams the document into name.
func writeFile(name string) (err error) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	_, err = session.text.WriteTo(f)
	return err
}

// Draws a prompt on the status bar and waits for user input
func editorDrawPrompt(prompt string, callback func() byte) string {
	input := buffer.New(buffer.WithProvider(provider))
	defer input.Dispose()

	for {
		frame := buffer.New(buffer.WithProvider(provider))
		fmt.Fprintf(frame, "\x1b[%d;1H", session.screenRows) // Go to status line
		frame.Append("\x1b[7m")                              // Inverted colors
		frame.Append(prompt)
		frame.AppendByte(' ')
		frame.AppendBytes(input.Bytes())
		msgLen := len(prompt) + 1 + input.Len()
		frame.Append("\x1b[K") // Clear rest of line
		frame.Append("\x1b[m") // Reset colors
		fmt.Fprintf(frame, "\x1b[%d;%dH", session.screenRows, msgLen+1)
		frame.Append("\x1b[?25h") // Show cursor
		_, _ = frame.WriteTo(out)
		frame.Dispose()

		key := editorReadKey(callback)

		switch key {
		case int(Return):
			return input.String()
		case int(Esc):
			return "" // Canceled
		case int(Backspace):
			if input.Len() > 0 {
				if err := input.Remove(input.Len()-1, 1); err != nil {
					logger.Warn("Prompt backspace failed", zap.Error(err))
				}
			}
		case 0, ArrowUp, ArrowDown, ArrowLeft, ArrowRight:
			// Ignore timeouts and arrow keys in prompt mode
			continue
		default:
			if key >= 32 && key < 127 { // Printable char
				input.AppendByte(byte(key))
			}
		}
	}
}

// findFrom returns the absolute offset of the first match of query at or
// after from, or -1.
func findFrom(query string, from int) int {
	if from > session.text.Len() {
		return -1
	}
	rel, err := session.text.IndexOfFrom(query, from)
	if err != nil || rel < 0 {
		return -1
	}
	// IndexOfFrom is relative to from
	return from + rel
}

// findNext finds query after the cursor, wrapping to the top of the document.
func findNext(query string) (idx int, wrapped bool) {
	searchFrom := session.cursorIdx + 1
	if searchFrom >= session.text.Len() {
		searchFrom = 0
	}
	if idx = findFrom(query, searchFrom); idx != -1 {
		return idx, false
	}
	return findFrom(query, 0), searchFrom != 0
}

// Prompts user for search query, moves cursor to the first result and
// keeps cycling through results while Ctrl-N is pressed.
func handleSearch(fd int, callback func() byte) {
	oldCursorIdx := session.cursorIdx

	query := editorDrawPrompt("Search (Esc to cancel):", callback)
	if query == "" {
		session.statusMessage = "Search canceled"
		return
	}
	session.lastSearchQuery = query

	for {
		idx, wrapped := findNext(query)
		if idx == -1 {
			logger.Debug("Search found nothing", zap.String("query", query))
			session.statusMessage = "Not found: " + query
			session.cursorIdx = oldCursorIdx
			updateCursorPosition()
			return
		}

		session.cursorIdx = idx
		updateCursorPosition()
		if wrapped {
			session.statusMessage = "Search wrapped to top"
		} else {
			session.statusMessage = "Ctrl-N: next match"
		}
		refreshScreen(fd)

		key := editorReadKey(callback)
		for key == 0 {
			key = editorReadKey(callback)
		}
		if key != int(CtrlN) {
			return
		}
	}
}

// updateCursorPosition updates row and column based on the byte offset
func updateCursorPosition() {
	text := session.text.Bytes()
	row := 1
	col := 1

	for i := 0; i < session.cursorIdx && i < len(text); i++ {
		if text[i] == '\n' {
			row++
			col = 1
		} else {
			col++
		}
	}

	session.cursorRow = row
	session.cursorCol = col
}

// getLines splits the document into lines
func getLines() []string {
	if session.text.Len() == 0 {
		return []string{""}
	}
	return strings.Split(session.text.String(), "\n")
}

// getLineStartIndex returns the starting index of a given row (1-indexed)
func getLineStartIndex(row int) int {
	lines := getLines()
	idx := 0
	for i := 0; i < row-1 && i < len(lines); i++ {
		idx += len(lines[i]) + 1 // +1 for newline
	}
	return idx
}

// statusLine renders the default status bar text.
func statusLine() string {
	sb := buffer.New(buffer.WithProvider(provider))
	defer sb.Dispose()

	sb.Append("File: ")
	sb.Append(session.filename)
	if session.dirty {
		sb.Append(" [+]")
	}
	sb.Append(" | Row:")
	if err := sb.AppendValue(buffer.Int(session.cursorRow), ""); err != nil {
		logger.Warn("Failed to format row", zap.Error(err))
	}
	sb.Append(" Col:")
	if err := sb.AppendValue(buffer.Int(session.cursorCol), ""); err != nil {
		logger.Warn("Failed to format column", zap.Error(err))
	}
	sb.Append(" | Ctrl-Q:Quit Ctrl-S:Save Ctrl-F:Find")
	return sb.String()
}

// refreshScreen redraws the entire screen
func refreshScreen(fd int) {
	frame := buffer.New(buffer.WithProvider(provider))
	defer frame.Dispose()

	// Hide cursor during refresh
	frame.Append("\x1b[?25l")
	// Clear screen and move cursor to top-left
	frame.Append("\x1b[2J")
	frame.Append("\x1b[H")

	lines := getLines()
	rows, cols := getWindowSize(fd)
	session.screenRows, session.screenCols = rows, cols

	// Draw content lines (leave one row for status bar)
	for i := 0; i < int(rows)-1; i++ {
		if i < len(lines) {
			frame.Append(lines[i])
		} else {
			frame.AppendByte('~')
		}
		frame.Append("\x1b[K") // Clear rest of the line
		frame.Append("\r\n")
	}

	var statusMsg string
	if session.statusMessage != "" {
		// Show a temporary message (e.g., "Not found")
		statusMsg = session.statusMessage
		session.statusMessage = "" // Clear it after displaying once
	} else {
		statusMsg = statusLine()
	}

	if len(statusMsg) > int(cols) {
		statusMsg = statusMsg[:cols]
	}

	frame.Append("\x1b[7m") // Inverted colors
	frame.Append(statusMsg)
	for i := len(statusMsg); i < int(cols); i++ {
		frame.AppendByte(' ')
	}
	frame.Append("\x1b[m") // Reset colors

	// Move cursor to correct position
	fmt.Fprintf(frame, "\x1b[%d;%dH", session.cursorRow, session.cursorCol)
	frame.Append("\x1b[?25h")

	// Write everything at once
	if _, err := frame.WriteTo(out); err != nil {
		logger.Warn("Failed to draw screen", zap.Error(err))
	}
}
