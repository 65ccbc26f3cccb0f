package pilotinput

import "io"

const (
	crsfFlightController = 0xC8
	crsfFrametypeRC      = 0x16

	// sync(1) + length(1) + type(1) + payload(22) + crc(1)
	crsfPacketSize = 26

	CRSFChannelValueMin = 172  // 987us
	CRSFChannelValueMax = 1811 // 2012us
)

type crsfState int

const (
	crsfDestination crsfState = iota
	crsfType
	crsfLength
	crsfPayload
	crsfChecksum
)

// CRSFDecoder decodes a TBS Crossfire byte stream, ported from the
// teacher's crsf.go destination/length/type/payload/checksum state
// machine and its bitwise CRC-8/DVB-S2.
type CRSFDecoder struct {
	r      io.ByteReader
	state  crsfState
	packet [crsfPacketSize]byte
	idx    uint8
	length uint8
}

// NewCRSFDecoder wraps r for decoding.
func NewCRSFDecoder(r io.ByteReader) *CRSFDecoder {
	return &CRSFDecoder{r: r}
}

// ELRSDecoder is a thin alias over CRSFDecoder: ExpressLRS is carried
// over CRSF framing, exactly as the teacher's elrs.go documents.
type ELRSDecoder = CRSFDecoder

// NewELRSDecoder wraps r for decoding an ExpressLRS byte stream.
func NewELRSDecoder(r io.ByteReader) *ELRSDecoder { return NewCRSFDecoder(r) }

func (d *CRSFDecoder) reset() {
	d.packet = [crsfPacketSize]byte{}
	d.idx = 0
	d.state = crsfDestination
}

// Next blocks until it has decoded one complete RC channels frame, or
// returns the underlying reader's error.
func (d *CRSFDecoder) Next() ([NumChannels]uint16, error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return [NumChannels]uint16{}, err
		}

		switch d.state {
		case crsfDestination:
			if b == crsfFlightController {
				d.packet[d.idx] = b
				d.idx = 1
				d.state = crsfLength
			}

		case crsfLength:
			d.length = b
			if d.length >= 2 && d.length <= 64 {
				d.packet[d.idx] = d.length
				d.idx++
				d.state = crsfType
			} else {
				d.reset()
			}

		case crsfType:
			if b == crsfFrametypeRC {
				d.packet[d.idx] = b
				d.idx++
				d.state = crsfPayload
			} else {
				d.reset()
			}

		case crsfPayload:
			d.packet[d.idx] = b
			d.idx++
			if d.idx >= d.length+1 {
				d.state = crsfChecksum
			}

		case crsfChecksum:
			want := crc8DVBS2(d.packet[2:d.idx])
			frame := d.packet
			d.reset()
			if want == b {
				return decodeCRSFFrame(frame), nil
			}
			// checksum mismatch: discard and keep reading for the next frame.
		}
	}
}

// decodeCRSFFrame unpacks the 11-bit channel values from a CRSF RC
// channels payload, the bit-packing logic ported from the teacher
// (itself derived from Betaflight).
func decodeCRSFFrame(payload [crsfPacketSize]byte) [NumChannels]uint16 {
	const payloadStart = 3
	bitstream := payload[payloadStart : crsfPacketSize-1]

	var channels [NumChannels]uint16
	var bitsMerged uint
	var readValue uint32
	var readByteIndex uint

	for n := 0; n < NumChannels; n++ {
		for bitsMerged < 11 {
			if readByteIndex >= uint(len(bitstream)) {
				return channels
			}
			readValue |= uint32(bitstream[readByteIndex]) << bitsMerged
			readByteIndex++
			bitsMerged += 8
		}
		channels[n] = uint16(readValue & 0x07FF)
		readValue >>= 11
		bitsMerged -= 11
	}
	return channels
}

// crc8DVBS2 computes the CRC8-DVB-S2 checksum CRSF frames use.
func crc8DVBS2(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0xD5
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
