package wire

import "bytes"

// Path builds the trusted source path for a channel: the remote ledger
// address bytes followed by the local ledger address bytes. The same value
// addresses outbound sends and authenticates inbound deliveries.
func Path(remote, local []byte) []byte {
	path := make([]byte, 0, len(remote)+len(local))
	path = append(path, remote...)
	return append(path, local...)
}

// PathEqual compares two paths byte for byte
func PathEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}
