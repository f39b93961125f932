package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/sales.txt
var salesRaw string

// Sales returns the salesperson system prompt, including the lookup protocol
// instructions. Safe to call concurrently; the embed is compile-time.
func Sales() string {
	return strings.TrimSpace(salesRaw)
}
