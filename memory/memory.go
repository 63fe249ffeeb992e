// Package memory is a sparse byte-addressable model of the 32-bit
// address space.
package memory

const (
	PAGE_BITS  = 12
	PAGE_SIZE  = 1 << PAGE_BITS
	TABLE_BITS = 10
	TABLE_SIZE = 1 << TABLE_BITS
)

type page [PAGE_SIZE]byte

type table [TABLE_SIZE]*page

// Memory is a two-level page table over 4 GiB. Bits [31:22] of an
// address select the table, bits [21:12] the page and bits [11:0] the
// byte. Untouched memory reads as zero and occupies no storage.
type Memory struct {
	tables [TABLE_SIZE]*table
	pages  int
}

func split(addr uint32) (outer, inner, offset uint32) {
	outer = addr >> (PAGE_BITS + TABLE_BITS)
	inner = (addr >> PAGE_BITS) & (TABLE_SIZE - 1)
	offset = addr & (PAGE_SIZE - 1)
	return
}

// lookup returns the page holding addr, allocating it when create is set.
func (mem *Memory) lookup(addr uint32, create bool) *page {
	outer, inner, _ := split(addr)

	tbl := mem.tables[outer]
	if tbl == nil {
		if !create {
			return nil
		}
		tbl = &table{}
		mem.tables[outer] = tbl
	}

	pg := tbl[inner]
	if pg == nil && create {
		pg = &page{}
		tbl[inner] = pg
		mem.pages++
	}

	return pg
}

// Read returns the byte at addr.
func (mem *Memory) Read(addr uint32) byte {
	pg := mem.lookup(addr, false)
	if pg == nil {
		return 0
	}
	return pg[addr&(PAGE_SIZE-1)]
}

// Write stores a byte at addr.
func (mem *Memory) Write(addr uint32, value byte) {
	mem.lookup(addr, true)[addr&(PAGE_SIZE-1)] = value
}

// GetRange copies len(buf) bytes starting at addr into buf. The range
// wraps at the top of the address space.
func (mem *Memory) GetRange(addr uint32, buf []byte) {
	for len(buf) > 0 {
		offset := addr & (PAGE_SIZE - 1)
		chunk := min(len(buf), int(PAGE_SIZE-offset))

		pg := mem.lookup(addr, false)
		if pg == nil {
			clear(buf[:chunk])
		} else {
			copy(buf[:chunk], pg[offset:])
		}

		buf = buf[chunk:]
		addr += uint32(chunk)
	}
}

// SetRange copies data into memory starting at addr.
func (mem *Memory) SetRange(addr uint32, data []byte) {
	for len(data) > 0 {
		offset := addr & (PAGE_SIZE - 1)
		pg := mem.lookup(addr, true)
		n := copy(pg[offset:], data)

		data = data[n:]
		addr += uint32(n)
	}
}

// Read16 returns the little-endian halfword at addr.
func (mem *Memory) Read16(addr uint32) uint16 {
	return uint16(mem.Read(addr)) | uint16(mem.Read(addr+1))<<8
}

// Read32 returns the little-endian word at addr.
func (mem *Memory) Read32(addr uint32) (value uint32) {
	for n := range uint32(4) {
		value |= uint32(mem.Read(addr+n)) << (8 * n)
	}
	return
}

// Write16 stores a little-endian halfword at addr.
func (mem *Memory) Write16(addr uint32, value uint16) {
	mem.Write(addr, byte(value))
	mem.Write(addr+1, byte(value>>8))
}

// Write32 stores a little-endian word at addr.
func (mem *Memory) Write32(addr uint32, value uint32) {
	for n := range uint32(4) {
		mem.Write(addr+n, byte(value>>(8*n)))
	}
}

// Reset drops every page.
func (mem *Memory) Reset() {
	clear(mem.tables[:])
	mem.pages = 0
}

// Pages returns the number of allocated pages.
func (mem *Memory) Pages() int {
	return mem.pages
}
