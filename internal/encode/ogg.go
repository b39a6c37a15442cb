package encode

import (
	"encoding/binary"
	"io"
)

const (
	oggHeaderSize = 27

	oggBOS byte = 0x02
	oggEOS byte = 0x04
)

// oggStream writes one logical Ogg bitstream, one packet per page.
type oggStream struct {
	w      io.Writer
	serial uint32
	seq    uint32
}

func newOggStream(w io.Writer, serial uint32) *oggStream {
	return &oggStream{w: w, serial: serial}
}

// WritePage frames packet as the next page of the stream.
func (s *oggStream) WritePage(packet []byte, headerType byte, granule uint64) error {
	_, err := s.w.Write(oggPage(packet, headerType, granule, s.serial, s.seq))
	s.seq++
	return err
}

var oggCRCTable = makeOggCRCTable()

// oggPage frames payload as a single Ogg page.
func oggPage(payload []byte, headerType byte, granule uint64, serial, seq uint32) []byte {
	nSegments := len(payload)/255 + 1
	page := make([]byte, oggHeaderSize+nSegments+len(payload))

	copy(page, "OggS")
	page[4] = 0
	page[5] = headerType
	binary.LittleEndian.PutUint64(page[6:], granule)
	binary.LittleEndian.PutUint32(page[14:], serial)
	binary.LittleEndian.PutUint32(page[18:], seq)
	page[26] = byte(nSegments)
	for i := 0; i < nSegments-1; i++ {
		page[oggHeaderSize+i] = 255
	}
	page[oggHeaderSize+nSegments-1] = byte(len(payload) % 255)
	copy(page[oggHeaderSize+nSegments:], payload)

	binary.LittleEndian.PutUint32(page[22:], oggChecksum(page))
	return page
}

// oggChecksum is the Ogg CRC-32: polynomial 0x04c11db7, unreflected, zero
// init, computed with the checksum field itself zeroed.
func oggChecksum(page []byte) uint32 {
	var crc uint32
	for i, b := range page {
		if i >= 22 && i < 26 {
			b = 0
		}
		crc = (crc << 8) ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}

func makeOggCRCTable() *[256]uint32 {
	var table [256]uint32
	const poly = 0x04c11db7
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ poly
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return &table
}
