package parse

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/bennu/posmap"
)

type role uint8

const (
	roleCok role = iota
	roleCerr
	roleEok
	roleEerr
)

// memoKey identifies one application of a parser. States are compared with
// State.Eq, so the key is as shallow as that comparison.
type memoKey struct {
	id    uint64
	state State
}

func (a memoKey) equal(b memoKey) bool {
	return a.id == b.id && a.state.Eq(b.state)
}

// memoEntry is a recorded outcome: which continuation was taken, with what.
type memoEntry struct {
	role  role
	value any
	state State
}

// frame is one open backtracking window, linked to the window enclosing it.
type frame struct {
	start Position
	next  *frame
}

// MemoTable is the packrat cache of a single top-level parse. It is persistent:
// every change returns a new table.
type MemoTable struct {
	table  *posmap.Map[Position, memoKey, memoEntry]
	frames *frame
	log    commonlog.Logger
	trace  bool
}

func newMemoTable(log commonlog.Logger) *MemoTable {
	return &MemoTable{
		table: posmap.New[Position, memoKey, memoEntry](ComparePositions, memoKey.equal),
		log:   log,
		trace: log != nil && log.AllowLevel(commonlog.Debug),
	}
}

// Len returns the number of recorded outcomes.
func (m *MemoTable) Len() int { return m.table.Len() }

// Windows returns the number of open backtracking windows.
func (m *MemoTable) Windows() int {
	n := 0
	for f := m.frames; f != nil; f = f.next {
		n++
	}
	return n
}

func (m *MemoTable) with(table *posmap.Map[Position, memoKey, memoEntry], frames *frame) *MemoTable {
	return &MemoTable{table: table, frames: frames, log: m.log, trace: m.trace}
}

func (m *MemoTable) pushWindow(start Position) *MemoTable {
	return m.with(m.table, &frame{start: start, next: m.frames})
}

// popWindow closes the innermost window. Closing the outermost window drops
// every entry at or after its start, since those describe input that can only
// be reached again through a new attempt.
func (m *MemoTable) popWindow() *MemoTable {
	if m.frames == nil {
		return m
	}
	table := m.table
	if m.frames.next == nil {
		table = table.Prune(m.frames.start)
		m.tracef("memo prune from %s: %d -> %d entries", m.frames.start, m.table.Len(), table.Len())
	}
	return m.with(table, m.frames.next)
}

func (m *MemoTable) lookup(pos Position, key memoKey) (memoEntry, bool) {
	return m.table.Lookup(pos, key)
}

func (m *MemoTable) record(pos Position, key memoKey, e memoEntry) *MemoTable {
	return m.with(m.table.Update(pos, key, e), m.frames)
}

func (m *MemoTable) tracef(format string, args ...any) {
	if m.trace {
		m.log.Debugf(format, args...)
	}
}

// Memo caches the outcome of p per position and state, so that applying it
// again at the same point replays the recorded continuation instead of
// parsing again.
func Memo(p *Parser) *Parser {
	return New(p.name, func(s State, m *MemoTable, k Conts) Step {
		pos := s.Position()
		key := memoKey{id: p.id, state: s}
		if e, ok := m.lookup(pos, key); ok {
			m.tracef("memo hit %s at %s", p.name, pos)
			return Apply(k.pick(e.role), e.value, e.state, m)
		}
		m.tracef("memo miss %s at %s", p.name, pos)

		record := func(next Cont, r role) Cont {
			return &windowCont{k: &memoCont{k: next, role: r, pos: pos, key: key, name: p.name}}
		}
		return &Tail{fn: p.fn, state: s, memo: m.pushWindow(pos), k: Conts{
			Cok:  record(k.Cok, roleCok),
			Cerr: record(k.Cerr, roleCerr),
			Eok:  record(k.Eok, roleEok),
			Eerr: record(k.Eerr, roleEerr),
		}}
	})
}
