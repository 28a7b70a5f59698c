package logger

import "github.com/google/uuid"

// Trace is a per-Resolve debug log, grounded on the teacher's debugLogs: a
// running narrative of which branch the dispatcher took, only assembled
// when Level is LevelDebug so the string-building cost disappears in
// production. ID correlates the notes of one resolution across an
// interleaved concurrent trace.
type Trace struct {
	ID     string
	what   string
	indent string
	notes  []MsgData
}

func NewTrace(log Log, what string) *Trace {
	if log.Level > LevelDebug {
		return nil
	}
	return &Trace{ID: uuid.NewString()[:8], what: what}
}

func (t *Trace) Note(text string) {
	if t == nil {
		return
	}
	t.notes = append(t.notes, MsgData{Text: t.indent + text})
}

func (t *Trace) Indent() {
	if t != nil {
		t.indent += "  "
	}
}

func (t *Trace) Dedent() {
	if t != nil && len(t.indent) >= 2 {
		t.indent = t.indent[2:]
	}
}

func (t *Trace) Flush(log Log) {
	if t == nil {
		return
	}
	log.AddDebug("[" + t.ID + "] " + t.what)
	for _, n := range t.notes {
		log.add(Msg{Kind: Debug, Data: MsgData{Text: "[" + t.ID + "] " + n.Text}})
	}
}
