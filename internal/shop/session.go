package shop

// Session holds the per-login checkout state. The HTTP layer backs it with
// the cookie session; tests use MemorySession.
type Session interface {
	Selection() []uint
	SetSelection(ids []uint)
	ClearSelection()
	LastOrders() []uint
	SetLastOrders(ids []uint)
}

// MemorySession is a Session kept in process memory.
type MemorySession struct {
	selection  []uint
	lastOrders []uint
}

func (m *MemorySession) Selection() []uint { return m.selection }

func (m *MemorySession) SetSelection(ids []uint) {
	m.selection = append([]uint(nil), ids...)
}

func (m *MemorySession) ClearSelection() { m.selection = nil }

func (m *MemorySession) LastOrders() []uint { return m.lastOrders }

func (m *MemorySession) SetLastOrders(ids []uint) {
	m.lastOrders = append([]uint(nil), ids...)
}
