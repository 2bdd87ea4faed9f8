package zk

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	t.Run("marshal embeds a verifiable checksum", func(t *testing.T) {
		p := packet{Command: cmdConnect, Session: 0, Reply: 1, Data: []byte{0x01, 0x02, 0x03}}
		buf := p.marshal()

		require.Len(t, buf, 11)
		got := binary.LittleEndian.Uint16(buf[2:])
		assert.Equal(t, checksum(p.Command, p.Session, p.Reply, p.Data), got)
	})

	t.Run("odd-length data folds the trailing byte", func(t *testing.T) {
		even := checksum(cmdData, 1, 1, []byte{0xff, 0x00})
		odd := checksum(cmdData, 1, 1, []byte{0xff})
		assert.Equal(t, even, odd)
	})
}

func TestParsePacket(t *testing.T) {
	t.Run("round-trips through marshal", func(t *testing.T) {
		want := packet{Command: cmdAckOK, Session: 0x1234, Reply: 7, Data: []byte("hello")}

		got, err := parsePacket(want.marshal())
		require.NoError(t, err)

		assert.Equal(t, want.Command, got.Command)
		assert.Equal(t, want.Session, got.Session)
		assert.Equal(t, want.Reply, got.Reply)
		assert.Equal(t, want.Data, got.Data)
	})

	t.Run("rejects short payloads", func(t *testing.T) {
		_, err := parsePacket([]byte{1, 2, 3})
		assert.Error(t, err)
	})
}

func TestTimestampCodec(t *testing.T) {
	t.Run("decodes the packed calendar encoding", func(t *testing.T) {
		at := time.Date(2024, 5, 6, 9, 30, 15, 0, time.UTC)
		assert.Equal(t, "2024-05-06 09:30:15", decodeTimestamp(encodeTimestamp(at)))
	})

	t.Run("epoch start", func(t *testing.T) {
		assert.Equal(t, "2000-01-01 00:00:00", decodeTimestamp(0))
	})
}

func TestCommKeyDigest(t *testing.T) {
	t.Run("deterministic per key and session", func(t *testing.T) {
		assert.Equal(t, commKeyDigest(42, 7), commKeyDigest(42, 7))
	})

	t.Run("varies with the session id", func(t *testing.T) {
		assert.NotEqual(t, commKeyDigest(42, 7), commKeyDigest(42, 8))
	})

	t.Run("varies with the key", func(t *testing.T) {
		assert.NotEqual(t, commKeyDigest(42, 7), commKeyDigest(43, 7))
	})
}

func TestCString(t *testing.T) {
	assert.Equal(t, "Amira", cstring([]byte{'A', 'm', 'i', 'r', 'a', 0, 'x', 'x'}))
	assert.Equal(t, "full", cstring([]byte("full")))
	assert.Equal(t, "", cstring([]byte{0, 'a'}))
}
