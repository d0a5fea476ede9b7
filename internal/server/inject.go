// Package server provides the preview HTTP server: a page showing the
// current banner, re-rendered on input changes and pushed to the browser
// over a websocket.
package server

import (
	"bytes"
	"fmt"
)

// wsPath is where the live reload socket is mounted.
const wsPath = "/__herogen/ws"

// liveReloadScript reloads the page when the server sends "reload". The
// first %s is the nonce, %d the port and the second %s the socket path.
const liveReloadScript = `<script nonce="%s">
(function() {
  var url = "ws://" + location.hostname + ":%d%s";
  var ws;
  function connect() {
    ws = new WebSocket(url);
    ws.onmessage = function(e) {
      if (e.data === "reload") {
        location.reload();
      }
    };
    ws.onclose = function() {
      setTimeout(connect, 1000);
    };
  }
  connect();
})();
</script>`

// InjectLiveReload inserts the live reload script immediately before the
// last </body> tag, or appends it when there is none. The nonce is placed
// on the script tag so the page CSP admits it.
func InjectLiveReload(html []byte, port int, nonce string) []byte {
	script := fmt.Appendf(nil, liveReloadScript, nonce, port, wsPath)

	idx := bytes.LastIndex(html, []byte("</body>"))
	if idx == -1 {
		return append(html, script...)
	}

	result := make([]byte, 0, len(html)+len(script))
	result = append(result, html[:idx]...)
	result = append(result, script...)
	result = append(result, html[idx:]...)
	return result
}
