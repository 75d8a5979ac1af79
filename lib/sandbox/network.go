package sandbox

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// bringUpLoopback brings the loopback interface up inside the child's
// network namespace. This adds no bridging, filtering, or address beyond
// loopback — a new network namespace starts with "lo" down and nothing
// else, so without this a payload cannot even reach 127.0.0.1.
func bringUpLoopback() error {
	link, err := netlink.LinkByName("lo")
	if err != nil {
		return fmt.Errorf("lookup loopback link: %w", err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("bring up loopback link: %w", err)
	}
	return nil
}
