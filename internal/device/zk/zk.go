// Package zk implements the device dialer for ZKTeco-compatible
// biometric terminals (uFace, iFace and U-series push terminals) over
// their binary TCP protocol.
package zk

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/attendsync/server/internal/device"
)

func init() {
	device.Register("zk", dialer{})
}

type dialer struct{}

// Dial connects to the terminal and completes the handshake, including
// comm-key authentication when the terminal demands it.
func (dialer) Dial(ctx context.Context, address string, port int, timeout time.Duration, creds device.Credentials) (device.Session, error) {
	nd := net.Dialer{Timeout: timeout}
	netConn, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}

	c := &conn{conn: netConn, timeout: timeout, commKey: creds.CommKey}
	if err := c.handshake(ctx); err != nil {
		netConn.Close()
		return nil, err
	}
	return c, nil
}

type conn struct {
	conn    net.Conn
	timeout time.Duration
	commKey int
	session uint16
	reply   uint16
}

func (c *conn) handshake(ctx context.Context) error {
	resp, err := c.roundTrip(ctx, cmdConnect, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	c.session = resp.Session

	if resp.Command == cmdAckUnauth {
		resp, err = c.roundTrip(ctx, cmdAuth, commKeyDigest(c.commKey, c.session))
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if resp.Command != cmdAckOK {
		return fmt.Errorf("zk: handshake rejected with command %d", resp.Command)
	}
	return nil
}

// GetUsers reads the terminal's user directory.
func (c *conn) GetUsers(ctx context.Context) ([]device.User, error) {
	data, err := c.readBuffered(ctx, cmdUserRRQ)
	if err != nil {
		return nil, fmt.Errorf("reading user directory: %w", err)
	}

	users := make([]device.User, 0, len(data)/userRecordSize)
	for len(data) >= userRecordSize {
		rec := data[:userRecordSize]
		data = data[userRecordSize:]

		uid := binary.LittleEndian.Uint16(rec[0:])
		name := cstring(rec[12:36])
		userID := cstring(rec[48:72])
		if userID == "" {
			// Older firmware only carries the numeric slot id.
			userID = strconv.Itoa(int(uid))
		}
		users = append(users, device.User{DeviceUserID: userID, Name: name})
	}
	return users, nil
}

// GetAttendanceLog reads every punch record the terminal holds. The
// terminal is disabled for the duration of the read so live punches do
// not corrupt the transfer, matching vendor tooling behavior.
func (c *conn) GetAttendanceLog(ctx context.Context) ([]device.RawPunch, error) {
	if _, err := c.roundTrip(ctx, cmdDisable, nil); err != nil {
		return nil, fmt.Errorf("disabling terminal: %w", err)
	}
	defer c.roundTrip(ctx, cmdEnable, nil)

	data, err := c.readBuffered(ctx, cmdAttLogRRQ)
	if err != nil {
		return nil, fmt.Errorf("reading attendance log: %w", err)
	}

	punches := make([]device.RawPunch, 0, len(data)/attRecordSize)
	for len(data) >= attRecordSize {
		rec := data[:attRecordSize]
		data = data[attRecordSize:]

		uid := binary.LittleEndian.Uint16(rec[0:])
		userID := cstring(rec[2:26])
		if userID == "" {
			userID = strconv.Itoa(int(uid))
		}
		punches = append(punches, device.RawPunch{
			DeviceUserID: userID,
			Timestamp:    decodeTimestamp(binary.LittleEndian.Uint32(rec[27:])),
			Status:       int(rec[26]),
			Direction:    int(rec[31]),
		})
	}
	return punches, nil
}

// ClearAttendanceLog wipes the terminal-side punch log.
func (c *conn) ClearAttendanceLog(ctx context.Context) error {
	resp, err := c.roundTrip(ctx, cmdClearAttLog, nil)
	if err != nil {
		return err
	}
	if resp.Command != cmdAckOK {
		return fmt.Errorf("zk: clear attendance rejected with command %d", resp.Command)
	}
	return nil
}

// Restart reboots the terminal. The terminal drops the connection while
// it restarts, so only the write is checked.
func (c *conn) Restart(ctx context.Context) error {
	if err := c.write(ctx, packet{Command: cmdRestart, Session: c.session, Reply: c.nextReply()}); err != nil {
		return err
	}
	return nil
}

// DeviceName reads the terminal's configured name option.
func (c *conn) DeviceName(ctx context.Context) (string, error) {
	return c.readOption(ctx, "~DeviceName")
}

// FirmwareVersion reads the terminal firmware version string.
func (c *conn) FirmwareVersion(ctx context.Context) (string, error) {
	resp, err := c.roundTrip(ctx, cmdGetVersion, nil)
	if err != nil {
		return "", err
	}
	if resp.Command != cmdAckOK {
		return "", fmt.Errorf("zk: version request rejected with command %d", resp.Command)
	}
	return cstring(resp.Data), nil
}

// Disconnect sends the exit command best-effort and closes the socket.
func (c *conn) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	c.write(ctx, packet{Command: cmdExit, Session: c.session, Reply: c.nextReply()})
	return c.conn.Close()
}

func (c *conn) readOption(ctx context.Context, name string) (string, error) {
	resp, err := c.roundTrip(ctx, cmdOptionsRRQ, append([]byte(name), 0))
	if err != nil {
		return "", err
	}
	if resp.Command != cmdAckOK {
		return "", fmt.Errorf("zk: option %s rejected with command %d", name, resp.Command)
	}
	// Replies come back as "name=value".
	value := cstring(resp.Data)
	if i := strings.IndexByte(value, '='); i >= 0 {
		value = value[i+1:]
	}
	return value, nil
}

// readBuffered runs the buffered-read exchange for bulk record tables.
// Small tables come back inline in a data reply; large ones are
// announced with a prepare-data reply and streamed in chunks.
func (c *conn) readBuffered(ctx context.Context, table uint16) ([]byte, error) {
	param := make([]byte, 11)
	param[0] = 0x01
	binary.LittleEndian.PutUint16(param[1:], table)

	resp, err := c.roundTrip(ctx, cmdDataWRRQ, param)
	if err != nil {
		return nil, err
	}

	switch resp.Command {
	case cmdData:
		return trimSizePrefix(resp.Data), nil

	case cmdPrepareData:
		if len(resp.Data) < 4 {
			return nil, fmt.Errorf("zk: malformed prepare-data reply")
		}
		total := int(binary.LittleEndian.Uint32(resp.Data))
		buf := make([]byte, 0, total)
		for len(buf) < total {
			chunk, err := c.read(ctx)
			if err != nil {
				return nil, err
			}
			if chunk.Command != cmdData {
				return nil, fmt.Errorf("zk: unexpected command %d during data transfer", chunk.Command)
			}
			buf = append(buf, chunk.Data...)
		}
		c.roundTrip(ctx, cmdFreeData, nil)
		return trimSizePrefix(buf[:total]), nil

	case cmdAckOK:
		// Empty table.
		return nil, nil

	default:
		return nil, fmt.Errorf("zk: bulk read rejected with command %d", resp.Command)
	}
}

// trimSizePrefix drops the u32 record-count header some firmware
// prepends to bulk payloads.
func trimSizePrefix(data []byte) []byte {
	if len(data) >= 4 && int(binary.LittleEndian.Uint32(data)) == len(data)-4 {
		return data[4:]
	}
	return data
}

func (c *conn) nextReply() uint16 {
	c.reply++
	return c.reply
}

func (c *conn) roundTrip(ctx context.Context, command uint16, data []byte) (packet, error) {
	req := packet{Command: command, Session: c.session, Reply: c.nextReply(), Data: data}
	if err := c.write(ctx, req); err != nil {
		return packet{}, err
	}
	return c.read(ctx)
}

func (c *conn) write(ctx context.Context, p packet) error {
	if err := c.setDeadline(ctx); err != nil {
		return err
	}
	payload := p.marshal()
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:], tcpMagic)
	binary.LittleEndian.PutUint32(header[4:], uint32(len(payload)))
	if _, err := c.conn.Write(append(header, payload...)); err != nil {
		return fmt.Errorf("zk: write: %w", err)
	}
	return nil
}

func (c *conn) read(ctx context.Context) (packet, error) {
	if err := c.setDeadline(ctx); err != nil {
		return packet{}, err
	}
	header := make([]byte, 8)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		return packet{}, fmt.Errorf("zk: read header: %w", err)
	}
	if binary.LittleEndian.Uint32(header) != tcpMagic {
		return packet{}, fmt.Errorf("zk: bad frame magic %#x", binary.LittleEndian.Uint32(header))
	}
	size := binary.LittleEndian.Uint32(header[4:])
	if size > 1<<20 {
		return packet{}, fmt.Errorf("zk: oversized frame (%d bytes)", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return packet{}, fmt.Errorf("zk: read payload: %w", err)
	}
	return parsePacket(payload)
}

func (c *conn) setDeadline(ctx context.Context) error {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.conn.SetDeadline(deadline)
}
