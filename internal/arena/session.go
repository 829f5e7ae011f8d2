package arena

// Conn is the outbound half of one connected socket. Send is fire-and-forget
// and must never block the caller; Close tears the socket down.
type Conn interface {
	Send(msg []byte)
	Close()
}

// ClientSession is the server-side record of one connected socket: who it is,
// what it is called, and the entity it currently controls. EntityID is zero
// while the session is unbound.
type ClientSession struct {
	ID       string
	Name     string
	EntityID int
	Conn     Conn
}
