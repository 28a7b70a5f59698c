// Package logger is a trimmed version of the structured message log the
// teacher threads through its own resolver: callers accumulate Msg records
// instead of writing text directly, so the same run can be rendered to a
// terminal, handed to a plugin host's error channel, or inspected by tests.
package logger

import (
	"fmt"
	"sync"
)

type LogLevel int8

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Debug
)

func (k MsgKind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "debug"
	}
}

type MsgData struct {
	Text string
}

type Msg struct {
	Kind  MsgKind
	Data  MsgData
	Notes []MsgData
}

func (m Msg) String() string {
	s := fmt.Sprintf("%s: %s", m.Kind, m.Data.Text)
	for _, n := range m.Notes {
		s += "\n  " + n.Text
	}
	return s
}

// Log collects messages produced during one resolve/build run. It is safe
// for concurrent use because the resolver may be consulted by many
// in-flight dev-server requests at once (spec §5).
type Log struct {
	Level LogLevel

	mutex *sync.Mutex
	msgs  *[]Msg
}

func NewLog(level LogLevel) Log {
	msgs := make([]Msg, 0, 4)
	return Log{Level: level, mutex: &sync.Mutex{}, msgs: &msgs}
}

func (log Log) add(msg Msg) {
	if log.Level > LevelError && msg.Kind == Error {
		// Errors are never suppressed even at LevelSilent; only warnings and
		// debug notes are gated by Level.
	} else if msg.Kind == Warning && log.Level > LevelWarning {
		return
	} else if msg.Kind == Debug && log.Level > LevelDebug {
		return
	}
	log.mutex.Lock()
	defer log.mutex.Unlock()
	*log.msgs = append(*log.msgs, msg)
}

func (log Log) AddError(text string) {
	log.add(Msg{Kind: Error, Data: MsgData{Text: text}})
}

func (log Log) AddErrorWithNotes(text string, notes []MsgData) {
	log.add(Msg{Kind: Error, Data: MsgData{Text: text}, Notes: notes})
}

func (log Log) AddWarning(text string) {
	log.add(Msg{Kind: Warning, Data: MsgData{Text: text}})
}

func (log Log) AddDebug(text string) {
	log.add(Msg{Kind: Debug, Data: MsgData{Text: text}})
}

func (log Log) Msgs() []Msg {
	log.mutex.Lock()
	defer log.mutex.Unlock()
	out := make([]Msg, len(*log.msgs))
	copy(out, *log.msgs)
	return out
}

func (log Log) HasErrors() bool {
	log.mutex.Lock()
	defer log.mutex.Unlock()
	for _, m := range *log.msgs {
		if m.Kind == Error {
			return true
		}
	}
	return false
}
