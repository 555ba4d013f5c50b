package sim

// Device models a slave attached to the simulated bus. Select is called
// when the device's address goes out on the wire; returning false leaves
// the address unacknowledged. Write acks or nacks each received byte.
// Release marks the stop request; bytes the master already committed to
// clock in may still be fetched afterwards.
type Device interface {
	Select(read bool) bool
	Write(b byte) bool
	Read() byte
	Release()
}

// FuncDevice assembles a Device from behavior functions. Nil fields get
// permissive defaults: addresses and bytes are acknowledged, reads
// return 0xFF like a floating bus.
type FuncDevice struct {
	OnSelect  func(read bool) bool
	OnWrite   func(b byte) bool
	OnRead    func() byte
	OnRelease func()
}

func (d *FuncDevice) Select(read bool) bool {
	if d.OnSelect == nil {
		return true
	}
	return d.OnSelect(read)
}

func (d *FuncDevice) Write(b byte) bool {
	if d.OnWrite == nil {
		return true
	}
	return d.OnWrite(b)
}

func (d *FuncDevice) Read() byte {
	if d.OnRead == nil {
		return 0xFF
	}
	return d.OnRead()
}

func (d *FuncDevice) Release() {
	if d.OnRelease != nil {
		d.OnRelease()
	}
}

// Memory is an EEPROM-style device: the first byte of a write sets the
// address pointer, the rest store sequentially; reads stream from the
// pointer. The pointer wraps at the memory size.
type Memory struct {
	data      []byte
	ptr       int
	expectPtr bool
}

func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Bytes exposes the backing array for assertions and preloading.
func (m *Memory) Bytes() []byte {
	return m.data
}

func (m *Memory) Select(read bool) bool {
	m.expectPtr = !read
	return true
}

func (m *Memory) Write(b byte) bool {
	if m.expectPtr {
		m.ptr = int(b) % len(m.data)
		m.expectPtr = false
		return true
	}
	m.data[m.ptr] = b
	m.ptr = (m.ptr + 1) % len(m.data)
	return true
}

func (m *Memory) Read() byte {
	v := m.data[m.ptr]
	m.ptr = (m.ptr + 1) % len(m.data)
	return v
}

func (m *Memory) Release() {
	m.expectPtr = false
}
