package connection

//go:generate mockgen -source=interface.go -destination=mock/connection_mock.go -package=mock

// CloseSuperseded is the websocket close code sent to a connection replaced
// by a newer one of the same user.
const CloseSuperseded = 4000

// Conn is one live client connection.
type Conn interface {
	ID() string
	UserID() string
	// Send queues payload for delivery. It fails once the connection is closed
	// or its outbound buffer is full.
	Send(payload []byte) error
	// Close sends a close frame with code and reason and releases the connection.
	Close(code int, reason string)
	IsOpen() bool
}

// Registry maps a user to their single live connection.
type Registry interface {
	// Register makes conn the user's connection and closes the one it replaces.
	Register(conn Conn)
	// Unregister removes conn only if it is still the registered connection.
	Unregister(conn Conn) bool
	Lookup(userID string) (Conn, bool)
	Len() int
}
