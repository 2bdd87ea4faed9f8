package zk

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Wire protocol constants for ZKTeco terminals. The TCP transport wraps
// every payload in a fixed magic header plus a length word.
const (
	tcpMagic = 0x7d825050

	cmdConnect     = 1000
	cmdExit        = 1001
	cmdEnable      = 1002
	cmdDisable     = 1003
	cmdRestart     = 1004
	cmdGetVersion  = 1100
	cmdAuth        = 1102
	cmdPrepareData = 1500
	cmdData        = 1501
	cmdFreeData    = 1502
	cmdDataWRRQ    = 1503

	cmdAckOK     = 2000
	cmdAckError  = 2001
	cmdAckData   = 2002
	cmdAckUnauth = 2005

	cmdUserRRQ     = 9
	cmdOptionsRRQ  = 11
	cmdAttLogRRQ   = 13
	cmdClearAttLog = 15

	userRecordSize = 72
	attRecordSize  = 40
)

// packet is one request or reply payload, without the TCP wrapper.
type packet struct {
	Command uint16
	Session uint16
	Reply   uint16
	Data    []byte
}

// checksum is the 16-bit ones'-complement sum the terminal verifies on
// every payload. The checksum field itself is summed as zero.
func checksum(command, session, reply uint16, data []byte) uint16 {
	sum := uint32(command) + uint32(session) + uint32(reply)
	for i := 0; i+1 < len(data); i += 2 {
		sum += uint32(binary.LittleEndian.Uint16(data[i:]))
	}
	if len(data)%2 == 1 {
		sum += uint32(data[len(data)-1])
	}
	for sum > 0xffff {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return uint16(^sum) & 0xffff
}

// marshal renders a payload with its checksum filled in.
func (p packet) marshal() []byte {
	buf := make([]byte, 8+len(p.Data))
	binary.LittleEndian.PutUint16(buf[0:], p.Command)
	binary.LittleEndian.PutUint16(buf[2:], checksum(p.Command, p.Session, p.Reply, p.Data))
	binary.LittleEndian.PutUint16(buf[4:], p.Session)
	binary.LittleEndian.PutUint16(buf[6:], p.Reply)
	copy(buf[8:], p.Data)
	return buf
}

func parsePacket(buf []byte) (packet, error) {
	if len(buf) < 8 {
		return packet{}, fmt.Errorf("zk: short payload (%d bytes)", len(buf))
	}
	return packet{
		Command: binary.LittleEndian.Uint16(buf[0:]),
		Session: binary.LittleEndian.Uint16(buf[4:]),
		Reply:   binary.LittleEndian.Uint16(buf[6:]),
		Data:    buf[8:],
	}, nil
}

// commKeyDigest derives the authentication blob the terminal expects
// when a communication key is set: the key's bits are reversed, the
// session id is folded in, and the result is XOR-scrambled with the
// "ZKSO" tag and a tick byte.
func commKeyDigest(key int, session uint16) []byte {
	var k uint32
	for i := 0; i < 32; i++ {
		k <<= 1
		if key&(1<<uint(i)) != 0 {
			k |= 1
		}
	}
	k += uint32(session)

	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], k)
	b[0] ^= 'Z'
	b[1] ^= 'K'
	b[2] ^= 'S'
	b[3] ^= 'O'
	b[0], b[1], b[2], b[3] = b[2], b[3], b[0], b[1]

	const ticks = 50
	b[0] ^= ticks
	b[1] ^= ticks
	b[2] = ticks
	b[3] ^= ticks
	return b[:]
}

// decodeTimestamp unpacks the terminal's packed calendar encoding: a
// u32 counting seconds, minutes, hours, then days in base 31 and months
// in base 12 from the year 2000. The result is a naive wall-clock time;
// zone interpretation happens upstream.
func decodeTimestamp(t uint32) string {
	second := t % 60
	t /= 60
	minute := t % 60
	t /= 60
	hour := t % 24
	t /= 24
	day := t%31 + 1
	t /= 31
	month := t%12 + 1
	t /= 12
	year := t + 2000
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, minute, second)
}

// encodeTimestamp is the inverse of decodeTimestamp.
func encodeTimestamp(t time.Time) uint32 {
	return ((uint32(t.Year())-2000)*12*31+uint32(t.Month()-1)*31+uint32(t.Day()-1))*24*60*60 +
		uint32(t.Hour())*3600 + uint32(t.Minute())*60 + uint32(t.Second())
}

// cstring trims a fixed-width record field at its first NUL.
func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
