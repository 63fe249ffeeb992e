package emulator

import (
	"maps"
	"slices"
	"sync"

	"github.com/ezrec/rvasm/config"
)

type session struct {
	mutex sync.Mutex
	emu   *Emulator
}

// Store holds the emulators of the open source buffers, keyed by id.
// An emulator is not safe for concurrent use; With serializes access to
// each one.
type Store struct {
	Config *config.Config // Memory layout of new emulators.

	mutex    sync.Mutex
	sessions map[string]*session
}

// Open returns the emulator for id, creating it if needed.
func (st *Store) Open(id string) (emu *Emulator) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if st.sessions == nil {
		st.sessions = map[string]*session{}
	}

	ses, ok := st.sessions[id]
	if !ok {
		ses = &session{emu: NewEmulator(st.Config)}
		st.sessions[id] = ses
	}

	return ses.emu
}

func (st *Store) lookup(id string) (ses *session, ok bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	ses, ok = st.sessions[id]
	return
}

// Get returns the emulator for id, if open.
func (st *Store) Get(id string) (emu *Emulator, ok bool) {
	ses, ok := st.lookup(id)
	if ok {
		emu = ses.emu
	}
	return
}

// With calls fn with the emulator for id, holding its session lock.
func (st *Store) With(id string, fn func(emu *Emulator) error) (err error) {
	ses, ok := st.lookup(id)
	if !ok {
		err = ErrSessionUnknown
		return
	}

	ses.mutex.Lock()
	defer ses.mutex.Unlock()

	return fn(ses.emu)
}

// Close forgets the emulator for id.
func (st *Store) Close(id string) (err error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if _, ok := st.sessions[id]; !ok {
		err = ErrSessionUnknown
		return
	}

	delete(st.sessions, id)
	return
}

// Ids returns the open session ids, sorted.
func (st *Store) Ids() []string {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	return slices.Sorted(maps.Keys(st.sessions))
}
