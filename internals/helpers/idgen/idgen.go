// Package idgen hands out human-facing reference numbers backed by a
// snowflake node.
package idgen

import (
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init sets the node id (0-1023). Safe to call more than once.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

func current() *snowflake.Node {
	mu.Lock()
	defer mu.Unlock()
	if node == nil {
		// tests and CLI commands that never called Init
		node, _ = snowflake.NewNode(1)
	}
	return node
}

// TransactionReference: "TX-<snowflake>".
func TransactionReference() string {
	return "TX-" + current().Generate().String()
}

// MemberNumber: "M-<BASE36>".
func MemberNumber() string {
	return "M-" + strings.ToUpper(current().Generate().Base36())
}
