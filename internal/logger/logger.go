package logger

// Diagnostics are streamed through a Log as they are discovered so that a
// single compilation can surface every independent problem it finds instead
// of stopping at the first one. Each Msg is data, not a Go error: the pass
// keeps traversing after reporting one.

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Note
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		panic("Internal error")
	}
}

// Msg is the unit produced by the Diagnostics Sink. ID is one of the stable
// MsgID_Rewriter_* keys in msg_ids.go; it never changes even if Text's
// wording does, so callers can filter or silence diagnostics by ID.
type Msg struct {
	Data  MsgData
	Notes []MsgData
	ID    MsgID
	Kind  MsgKind
}

type MsgData struct {
	Text       string
	Location   *MsgLocation
	UserDetail interface{}
}

type MsgLocation struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

// Loc is the 0-based byte offset of a position from the start of a script's
// source text. The pass never computes new positions: every rewritten node
// either keeps the Loc of the node it replaces or is synthetic and carries
// LocInvalid.
type Loc struct {
	Start int32
}

var LocInvalid = Loc{Start: -1}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

// Source is one parsed script. Index is the script's position in its input
// batch; per-script bookkeeping such as Global Rewrite State's reverse
// index is keyed by the script's root node, not by Index. PrettyPath is
// only ever used for diagnostics.
type Source struct {
	Contents   string
	PrettyPath string
	Index      uint32
}

func computeLineAndColumn(contents string, offset int) (lineCount int, columnCount int, lineStart int, lineEnd int) {
	var prevCodePoint rune
	if offset > len(contents) {
		offset = len(contents)
	}
	if offset < 0 {
		offset = 0
	}

	for i, codePoint := range contents[:offset] {
		switch codePoint {
		case '\n':
			lineStart = i + 1
			if prevCodePoint != '\r' {
				lineCount++
			}
		case '\r':
			lineStart = i + 1
			lineCount++
		}
		prevCodePoint = codePoint
	}

	lineEnd = len(contents)
loop:
	for i, codePoint := range contents[offset:] {
		switch codePoint {
		case '\r', '\n':
			lineEnd = offset + i
			break loop
		}
	}

	columnCount = offset - lineStart
	return
}

// LocationOrNil converts a byte range into a line/column MsgLocation. It
// returns nil when the source is unavailable (e.g. a synthetic node with no
// traceable origin), matching the teacher's convention of an optional
// location rather than a zero-value sentinel.
func LocationOrNil(source *Source, r Range) *MsgLocation {
	if source == nil || r.Loc.Start < 0 {
		return nil
	}
	lineCount, columnCount, lineStart, lineEnd := computeLineAndColumn(source.Contents, int(r.Loc.Start))
	return &MsgLocation{
		File:     source.PrettyPath,
		Line:     lineCount + 1,
		Column:   columnCount,
		Length:   int(r.Len),
		LineText: source.Contents[lineStart:lineEnd],
	}
}

func RangeData(source *Source, r Range, text string) MsgData {
	return MsgData{
		Text:     text,
		Location: LocationOrNil(source, r),
	}
}

// SortableMsgs lets Done() return diagnostics in a deterministic order
// (file, then line, then column) regardless of traversal order.
type SortableMsgs []Msg

func (a SortableMsgs) Len() int      { return len(a) }
func (a SortableMsgs) Swap(i, j int) { a[i], a[j] = a[j], a[i] }

func (a SortableMsgs) Less(i, j int) bool {
	ai, aj := a[i], a[j]
	aiLoc, ajLoc := ai.Data.Location, aj.Data.Location
	if aiLoc == nil || ajLoc == nil {
		return aiLoc == nil && ajLoc != nil
	}
	if aiLoc.File != ajLoc.File {
		return aiLoc.File < ajLoc.File
	}
	if aiLoc.Line != ajLoc.Line {
		return aiLoc.Line < ajLoc.Line
	}
	if aiLoc.Column != ajLoc.Column {
		return aiLoc.Column < ajLoc.Column
	}
	return ai.ID < aj.ID
}

// Log is the Diagnostics Sink (§6): a process that accumulates Msg values
// and can report whether any of them were errors, which gates whether the
// Updater phase runs at all (§7).
type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

// NewDeferLog buffers every message instead of printing it immediately, the
// way the teacher's own deferred log does for uses that need to inspect the
// full message list (tests, hot-swap callers that want to decide what to do
// with warnings themselves).
func NewDeferLog() Log {
	var mutex sync.Mutex
	var msgs SortableMsgs
	var hasErrors bool

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sort.Stable(msgs)
			out := make([]Msg, len(msgs))
			copy(out, msgs)
			return out
		},
	}
}

func (log Log) AddErrorWithID(source *Source, loc Loc, id MsgID, text string) {
	log.AddMsg(Msg{ID: id, Kind: Error, Data: RangeData(source, Range{Loc: loc}, text)})
}

func (log Log) AddRangeErrorWithID(source *Source, r Range, id MsgID, text string) {
	log.AddMsg(Msg{ID: id, Kind: Error, Data: RangeData(source, r, text)})
}

func (log Log) AddWarningWithID(source *Source, loc Loc, id MsgID, text string) {
	log.AddMsg(Msg{ID: id, Kind: Warning, Data: RangeData(source, Range{Loc: loc}, text)})
}

// String renders a Msg the way the teacher renders a clang-style diagnostic,
// minus terminal-width wrapping and color (this pass has no TTY of its own;
// the CLI driver is free to re-color msg.Kind itself).
func (msg Msg) String() string {
	loc := msg.Data.Location
	if loc == nil {
		return fmt.Sprintf("%s: %s", msg.Kind, msg.Data.Text)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s: %s", loc.File, loc.Line, loc.Column, msg.Kind, msg.Data.Text)
	for _, note := range msg.Notes {
		if note.Location != nil {
			fmt.Fprintf(&b, "\n  %s:%d:%d: note: %s", note.Location.File, note.Location.Line, note.Location.Column, note.Text)
		} else {
			fmt.Fprintf(&b, "\n  note: %s", note.Text)
		}
	}
	return b.String()
}
