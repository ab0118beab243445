// Package sectorcache implements the write-back, least-recently-used page
// cache that sits between the FAT-family layers above it and a raw
// BlockDevice below it.
//
// The algorithm is a direct port of libfat's cache.c: a fixed number of
// pages, each holding up to P contiguous sectors, replaced by oldest
// last-access tag with FREE pages preferred first. See DESIGN.md for the
// grounding and the open-question decisions recorded there.
//
// A Cache is not safe for concurrent use. It belongs to exactly one mount.
package sectorcache

import (
	"fmt"

	"github.com/dargueta/nitrofat/blockdev"
	"github.com/dargueta/nitrofat/errors"
)

// MinPages is the smallest number of pages a Cache will actually use;
// constructor requests below this are silently raised.
const MinPages = 2

// MinSectorsPerPage is the smallest page size, in sectors, a Cache will
// actually use; constructor requests below this are silently raised.
const MinSectorsPerPage = 8

// freeSector is the sentinel page.start value meaning "this page holds no
// data". It is the maximum representable sector index.
const freeSector = ^uint32(0)

// page is one cache slot, able to hold up to sectorsPerPage contiguous
// sectors in buf.
type page struct {
	start      uint32
	count      uint32
	lastAccess uint64
	dirty      bool
	buf        []byte
}

func (p *page) isFree() bool {
	return p.start == freeSector
}

// end returns the sector index one past the last sector this page holds.
func (p *page) end() uint32 {
	return p.start + p.count
}

// contains reports whether sector s currently lives in this page.
func (p *page) contains(s uint32) bool {
	return !p.isFree() && s >= p.start && s < p.end()
}

// Cache is a write-back LRU sector cache sitting in front of a BlockDevice.
type Cache struct {
	device         blockdev.BlockDevice
	pages          []page
	backing        []byte
	sectorsPerPage uint32
	accessCounter  uint64
}

// New creates a Cache with numPages pages of sectorsPerPage sectors each,
// backed by device. numPages and sectorsPerPage are silently raised to
// MinPages and MinSectorsPerPage respectively.
//
// New never fails on its own; cache construction only allocates memory, so
// the only failure mode is an allocation panic, which Go's runtime already
// handles by crashing the process rather than returning a recoverable
// error. Callers that need ResourceExhausted semantics (e.g. an embedded
// host with a fixed memory budget) should pre-flight the allocation size
// with EstimateBytes before calling New.
func New(numPages, sectorsPerPage uint32, device blockdev.BlockDevice) *Cache {
	if numPages < MinPages {
		numPages = MinPages
	}
	if sectorsPerPage < MinSectorsPerPage {
		sectorsPerPage = MinSectorsPerPage
	}

	backing := make([]byte, uint64(numPages)*uint64(sectorsPerPage)*blockdev.SectorSize)
	pages := make([]page, numPages)
	pageBytes := uint64(sectorsPerPage) * blockdev.SectorSize
	for i := range pages {
		pages[i] = page{
			start: freeSector,
			buf:   backing[uint64(i)*pageBytes : uint64(i+1)*pageBytes],
		}
	}

	return &Cache{
		device:         device,
		pages:          pages,
		backing:        backing,
		sectorsPerPage: sectorsPerPage,
	}
}

// EstimateBytes returns the number of bytes New(numPages, sectorsPerPage, _)
// will allocate for page storage, after clamping to the documented minimums.
// Use it to decide whether a cache of a given shape fits a memory budget
// before calling New.
func EstimateBytes(numPages, sectorsPerPage uint32) uint64 {
	if numPages < MinPages {
		numPages = MinPages
	}
	if sectorsPerPage < MinSectorsPerPage {
		sectorsPerPage = MinSectorsPerPage
	}
	return uint64(numPages) * uint64(sectorsPerPage) * blockdev.SectorSize
}

func (c *Cache) tick() uint64 {
	c.accessCounter++
	return c.accessCounter
}

// restartBudget bounds the "rescan all pages" loop in the bulk read/write
// algorithms. See DESIGN.md open question 3.
func (c *Cache) restartBudget(numSectors uint32) int {
	return 2*len(c.pages) + int(numSectors) + 1
}

// pickVictim returns the index of the page that should be evicted next: the
// lowest-indexed FREE page if one exists, else the page with the smallest
// lastAccess.
func (c *Cache) pickVictim() int {
	victim := 0
	oldest := c.pages[0].lastAccess
	for i := range c.pages {
		if c.pages[i].isFree() {
			return i
		}
		if c.pages[i].lastAccess < oldest {
			victim = i
			oldest = c.pages[i].lastAccess
		}
	}
	return victim
}

// writeBack flushes a single page to the device if dirty, clearing its
// dirty bit on success. The page is left untouched (still dirty) on
// failure, so a retried flush or eviction tries the write again instead of
// silently losing the update.
func (c *Cache) writeBack(p *page) error {
	if !p.dirty {
		return nil
	}
	if err := c.device.WriteSectors(p.start, p.count, p.buf[:uint64(p.count)*blockdev.SectorSize]); err != nil {
		return errors.ErrDeviceIO.Wrap(err)
	}
	p.dirty = false
	return nil
}

// evictForRead prepares victim page i to receive a fresh read starting at
// sector, writing back any dirty contents first.
func (c *Cache) evictForRead(i int, sector uint32) error {
	if err := c.writeBack(&c.pages[i]); err != nil {
		return err
	}
	p := &c.pages[i]
	if err := c.device.ReadSectors(sector, c.sectorsPerPage, p.buf); err != nil {
		return errors.ErrDeviceIO.Wrap(err)
	}
	p.start = sector
	p.count = c.sectorsPerPage
	p.dirty = false
	p.lastAccess = c.tick()
	return nil
}

// GetSectors fills out (which must be exactly n*SectorSize bytes) with the
// contents of sectors [first, first+n).
func (c *Cache) GetSectors(first uint32, n uint32, out []byte) error {
	if uint64(len(out)) != uint64(n)*blockdev.SectorSize {
		return errors.ErrInvalidRequest.WithMessage(
			fmt.Sprintf("output buffer is %d bytes, expected %d", len(out), uint64(n)*blockdev.SectorSize),
		)
	}

	sector := first
	remaining := n
	outPos := uint64(0)
	budget := c.restartBudget(n)

	for remaining > 0 {
		exhausted := true
		for iter := 0; iter < budget; iter++ {
			matched := -1
			for i := range c.pages {
				if c.pages[i].contains(sector) {
					matched = i
					break
				}
			}
			if matched < 0 {
				exhausted = false
				break
			}
			p := &c.pages[matched]
			p.lastAccess = c.tick()
			run := p.end() - sector
			if run > remaining {
				run = remaining
			}
			srcOff := uint64(sector-p.start) * blockdev.SectorSize
			copy(out[outPos:outPos+uint64(run)*blockdev.SectorSize], p.buf[srcOff:srcOff+uint64(run)*blockdev.SectorSize])
			outPos += uint64(run) * blockdev.SectorSize
			sector += run
			remaining -= run
			if remaining == 0 {
				return nil
			}
		}
		if exhausted {
			// The restart budget was exhausted while still making progress;
			// this can only happen if MinPages/MinSectorsPerPage invariants
			// were violated elsewhere.
			panic("sectorcache: exceeded restart budget in GetSectors")
		}

		victim := c.pickVictim()
		if err := c.evictForRead(victim, sector); err != nil {
			return err
		}
		p := &c.pages[victim]
		run := p.count
		if run > remaining {
			run = remaining
		}
		copy(out[outPos:outPos+uint64(run)*blockdev.SectorSize], p.buf[:uint64(run)*blockdev.SectorSize])
		outPos += uint64(run) * blockdev.SectorSize
		sector += run
		remaining -= run
	}
	return nil
}

// WriteSectors updates sectors [first, first+n) from in (which must be
// exactly n*SectorSize bytes), marking the backing pages dirty.
func (c *Cache) WriteSectors(first uint32, n uint32, in []byte) error {
	if uint64(len(in)) != uint64(n)*blockdev.SectorSize {
		return errors.ErrInvalidRequest.WithMessage(
			fmt.Sprintf("input buffer is %d bytes, expected %d", len(in), uint64(n)*blockdev.SectorSize),
		)
	}

	sector := first
	remaining := n
	inPos := uint64(0)
	budget := c.restartBudget(n)

	for remaining > 0 {
		exhausted := true
		for iter := 0; iter < budget; iter++ {
			matched := -1
			for i := range c.pages {
				p := &c.pages[i]
				if p.contains(sector) || (sector == p.end() && !p.isFree() && p.count < c.sectorsPerPage) {
					matched = i
					break
				}
			}
			if matched < 0 {
				exhausted = false
				break
			}
			p := &c.pages[matched]
			sec := sector - p.start
			run := c.sectorsPerPage - sec
			if run > remaining {
				run = remaining
			}
			dstOff := uint64(sec) * blockdev.SectorSize
			copy(p.buf[dstOff:dstOff+uint64(run)*blockdev.SectorSize], in[inPos:inPos+uint64(run)*blockdev.SectorSize])
			p.lastAccess = c.tick()
			p.dirty = true
			if sec+run > p.count {
				p.count = sec + run
			}
			inPos += uint64(run) * blockdev.SectorSize
			sector += run
			remaining -= run
			if remaining == 0 {
				return nil
			}
		}
		if exhausted {
			panic("sectorcache: exceeded restart budget in WriteSectors")
		}

		victim := c.pickVictim()
		if err := c.writeBack(&c.pages[victim]); err != nil {
			return err
		}
		p := &c.pages[victim]
		run := remaining
		if run > c.sectorsPerPage {
			run = c.sectorsPerPage
		}
		copy(p.buf[:uint64(run)*blockdev.SectorSize], in[inPos:inPos+uint64(run)*blockdev.SectorSize])
		p.start = sector
		p.count = run
		p.dirty = true
		p.lastAccess = c.tick()
		inPos += uint64(run) * blockdev.SectorSize
		sector += run
		remaining -= run
	}
	return nil
}

func (c *Cache) checkPartialBounds(off, size uint32) error {
	if uint64(off)+uint64(size) > blockdev.SectorSize {
		return errors.ErrInvalidRequest.WithMessage(
			fmt.Sprintf("offset %d + size %d exceeds sector size %d", off, size, blockdev.SectorSize),
		)
	}
	return nil
}

// ReadPartial copies len(out) bytes starting at byte offset off of sector
// into out. off+len(out) must not exceed SectorSize.
func (c *Cache) ReadPartial(sector uint32, off uint32, out []byte) error {
	if err := c.checkPartialBounds(off, uint32(len(out))); err != nil {
		return err
	}
	scratch := make([]byte, blockdev.SectorSize)
	if err := c.GetSectors(sector, 1, scratch); err != nil {
		return err
	}
	copy(out, scratch[off:uint64(off)+uint64(len(out))])
	return nil
}

// findHostingPage locates the page currently holding sector. The caller
// must have already ensured the sector is present (e.g. via GetSectors).
func (c *Cache) findHostingPage(sector uint32) *page {
	for i := range c.pages {
		if c.pages[i].contains(sector) {
			return &c.pages[i]
		}
	}
	return nil
}

// WritePartial merges in into sector at byte offset off, first ensuring the
// sector is present in cache (reading it in if missing). off+len(in) must
// not exceed SectorSize.
func (c *Cache) WritePartial(sector uint32, off uint32, in []byte) error {
	if err := c.checkPartialBounds(off, uint32(len(in))); err != nil {
		return err
	}
	scratch := make([]byte, blockdev.SectorSize)
	if err := c.GetSectors(sector, 1, scratch); err != nil {
		return err
	}
	p := c.findHostingPage(sector)
	if p == nil {
		// GetSectors just guaranteed presence; this would indicate a broken
		// invariant rather than a request error.
		panic("sectorcache: sector vanished after GetSectors")
	}
	secOff := uint64(sector-p.start) * blockdev.SectorSize
	copy(p.buf[secOff+uint64(off):secOff+uint64(off)+uint64(len(in))], in)
	p.dirty = true
	p.lastAccess = c.tick()
	return nil
}

// EraseWritePartial behaves like WritePartial, except the destination
// sector is zeroed in cache before in is merged in.
func (c *Cache) EraseWritePartial(sector uint32, off uint32, in []byte) error {
	if err := c.checkPartialBounds(off, uint32(len(in))); err != nil {
		return err
	}
	scratch := make([]byte, blockdev.SectorSize)
	if err := c.GetSectors(sector, 1, scratch); err != nil {
		return err
	}
	p := c.findHostingPage(sector)
	if p == nil {
		panic("sectorcache: sector vanished after GetSectors")
	}
	secOff := uint64(sector-p.start) * blockdev.SectorSize
	sectorBuf := p.buf[secOff : secOff+blockdev.SectorSize]
	for i := range sectorBuf {
		sectorBuf[i] = 0
	}
	copy(sectorBuf[off:uint64(off)+uint64(len(in))], in)
	p.dirty = true
	p.lastAccess = c.tick()
	return nil
}

// Flush writes every dirty page back to the device, then clears all dirty
// bits. A failure leaves the offending page (and any pages not yet reached)
// dirty, so a later Flush may reattempt.
func (c *Cache) Flush() error {
	for i := range c.pages {
		if err := c.writeBack(&c.pages[i]); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate flushes, then marks every page FREE.
func (c *Cache) Invalidate() error {
	if err := c.Flush(); err != nil {
		return err
	}
	for i := range c.pages {
		c.pages[i].start = freeSector
		c.pages[i].count = 0
		c.pages[i].lastAccess = 0
		c.pages[i].dirty = false
	}
	return nil
}
