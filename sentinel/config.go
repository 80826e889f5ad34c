package sentinel

import (
	"fmt"
	"io"
)

// WriteConfig emits a plain-text Sentinel config file for a single master,
// the test-fixture surface named in spec.md §6. It is not used by the
// resolver itself.
func WriteConfig(w io.Writer, port int, master, ip string, masterPort, quorum int) error {
	_, err := fmt.Fprintf(w,
		"port %d\n"+
			"sentinel monitor %s %s %d %d\n"+
			"sentinel down-after-milliseconds %s 60000\n",
		port, master, ip, masterPort, quorum, master)
	return err
}
