package z21

import (
	"net"
	"strconv"
	"time"
)

// Transport abstracts the UDP socket the session layer speaks over, so the
// core client is testable against an in-memory fake instead of a real NIC
// (mirrors the teacher's commandstation.Station abstraction over the
// physical link).
type Transport interface {
	// Send writes a datagram to the configured remote endpoint.
	Send(frame []byte) error
	// Receive blocks until a datagram arrives or deadline elapses, returning
	// the payload and the sender's address.
	Receive(deadline time.Time) (payload []byte, from net.Addr, err error)
	// LocalAddr is the transport's bound local address.
	LocalAddr() net.Addr
	// Close releases the underlying socket.
	Close() error
}

// UDPTransport is the real network Transport, bound to a remote z21 station.
type UDPTransport struct {
	conn   *net.UDPConn
	remote *net.UDPAddr
}

// DialUDPTransport binds an unconnected UDP socket on an ephemeral local port
// and addresses every Send to host:port for unicast session traffic.
func DialUDPTransport(host string, port uint16) (*UDPTransport, error) {
	remote, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, portString(port)))
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, err
	}
	return &UDPTransport{conn: conn, remote: remote}, nil
}

func (t *UDPTransport) Send(frame []byte) error {
	_, err := t.conn.WriteToUDP(frame, t.remote)
	return err
}

func (t *UDPTransport) Receive(deadline time.Time) ([]byte, net.Addr, error) {
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, nil, err
	}
	buf := make([]byte, 1500)
	n, from, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], from, nil
}

func (t *UDPTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *UDPTransport) Close() error {
	return t.conn.Close()
}

// BroadcastUDPTransport is a throwaway socket used only by discovery: it
// sends one broadcast datagram and collects replies from any source.
type BroadcastUDPTransport struct {
	conn *net.UDPConn
	port uint16
}

// DialBroadcastUDPTransport opens a broadcast-capable socket on an ephemeral
// local port; SendBroadcast addresses the broadcast address on port.
func DialBroadcastUDPTransport(port uint16) (*BroadcastUDPTransport, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, err
	}
	return &BroadcastUDPTransport{conn: conn, port: port}, nil
}

func (t *BroadcastUDPTransport) SendBroadcast(frame []byte) error {
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(DiscoveryBroadcastAddr, portString(t.port)))
	if err != nil {
		return err
	}
	_, err = t.conn.WriteToUDP(frame, addr)
	return err
}

func (t *BroadcastUDPTransport) Receive(deadline time.Time) ([]byte, net.Addr, error) {
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return nil, nil, err
	}
	buf := make([]byte, 1500)
	n, from, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], from, nil
}

func (t *BroadcastUDPTransport) Close() error {
	return t.conn.Close()
}

func portString(p uint16) string {
	return strconv.Itoa(int(p))
}
