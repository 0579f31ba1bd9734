package spmm

import (
	"hash/fnv"
	"sync"
)

// frame is one activation record: the procedure being executed, its local
// state and the suspended caller frame (-1 for the synthetic outer frame).
type frame struct {
	proc   Symbol
	state  int
	parent int
	depth  int
	hash   uint64
}

type frameKey struct {
	proc   Symbol
	state  int
	parent int
}

// frameArena hash-conses frames so that two structurally equal stacks get
// the same index. Frames are never removed or modified, so an arena grows
// with the distinct stacks it has seen. A system's own arena is fed only by
// Transition and Run; Compute and ComputeSuffix use a scratch arena.
type frameArena struct {
	mu     sync.RWMutex
	frames []frame
	intern map[frameKey]int
}

func newFrameArena() *frameArena {
	return &frameArena{intern: make(map[frameKey]int)}
}

func (a *frameArena) get(id int) frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frames[id]
}

// push returns the frame (proc, state) on top of parent.
func (a *frameArena) push(proc Symbol, state, parent int) int {
	key := frameKey{proc: proc, state: state, parent: parent}
	a.mu.RLock()
	id, ok := a.intern[key]
	a.mu.RUnlock()
	if ok {
		return id
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.intern[key]; ok {
		return id
	}
	var parentHash uint64
	depth := 1
	if parent >= 0 {
		parentHash = a.frames[parent].hash
		depth = a.frames[parent].depth + 1
	}
	id = len(a.frames)
	a.frames = append(a.frames, frame{
		proc:   proc,
		state:  state,
		parent: parent,
		depth:  depth,
		hash:   frameHash(proc, state, parentHash),
	})
	a.intern[key] = id
	return id
}

func (a *frameArena) size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.frames)
}

func frameHash(proc Symbol, state int, parent uint64) uint64 {
	h := fnv.New64a()
	h.Write([]byte(proc))
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(uint64(state) >> (8 * i))
		buf[8+i] = byte(parent >> (8 * i))
	}
	h.Write(buf[:])
	return h.Sum64()
}

// stateKind tags the synthetic execution states.
type stateKind uint8

const (
	kindInitial stateKind = iota
	kindRunning
	kindErrorSink
	kindPostReturnSink
)

// ExecState is a global configuration of a System: a synthetic state or a
// reference to the top frame of the call stack. ExecStates of the same System
// are comparable with ==.
type ExecState struct {
	kind  stateKind
	frame int
}

var (
	initialState    = ExecState{kind: kindInitial, frame: -1}
	errorSinkState  = ExecState{kind: kindErrorSink, frame: -1}
	postReturnState = ExecState{kind: kindPostReturnSink, frame: -1}
)

func (s ExecState) IsInitial() bool    { return s.kind == kindInitial }
func (s ExecState) IsError() bool      { return s.kind == kindErrorSink }
func (s ExecState) IsPostReturn() bool { return s.kind == kindPostReturnSink }
func (s ExecState) IsRunning() bool    { return s.kind == kindRunning }
