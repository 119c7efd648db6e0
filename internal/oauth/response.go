package oauth

import (
	"fmt"
	"net"
)

const successMessage = "Authorization successful. You can close this window."

// SendResponse writes a minimal HTTP/1.1 200 plain-text response carrying
// msg and closes conn, whether or not the write succeeded.
func SendResponse(conn net.Conn, msg string) error {
	defer conn.Close()
	resp := fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"Content-Type: text/plain; charset=utf-8\r\n"+
		"Content-Length: %d\r\n"+
		"Connection: close\r\n"+
		"\r\n%s", len(msg), msg)
	if _, err := conn.Write([]byte(resp)); err != nil {
		return fmt.Errorf("write callback response: %w", err)
	}
	return nil
}
