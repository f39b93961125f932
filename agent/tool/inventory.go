// Package tool hosts the read-only gateways the dialogue agent may call
// through the tool-calling loop.
package tool

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

// maxResultRows bounds how much catalog data one lookup can pull into the
// model context.
const maxResultRows = 10

var forbiddenVerbRe = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|replace|truncate|grant|revoke|attach|vacuum|pragma)\b`)

// InventoryGateway executes catalog lookups for the dialogue agent. All
// failure modes are folded into the returned text; this boundary never raises
// to the loop engine, because whatever it returns goes straight back into the
// model conversation.
type InventoryGateway struct {
	catalog contractx.Catalog
}

var _ contractx.InventoryGateway = (*InventoryGateway)(nil)

func NewInventoryGateway(catalog contractx.Catalog) *InventoryGateway {
	return &InventoryGateway{catalog: catalog}
}

func (g *InventoryGateway) Query(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if err := ValidateReadOnly(query); err != nil {
		return "ERROR: " + err.Error()
	}

	cols, rows, err := g.catalog.Select(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("inventory query failed")
		return "ERROR: " + err.Error()
	}
	if len(rows) == 0 {
		return "no matching rows"
	}

	truncated := false
	if len(rows) > maxResultRows {
		rows = rows[:maxResultRows]
		truncated = true
	}

	var b strings.Builder
	b.WriteString(strings.Join(cols, " | "))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(strings.Join(row, " | "))
	}
	if truncated {
		fmt.Fprintf(&b, "\n(first %d rows shown)", maxResultRows)
	}
	return b.String()
}

// ValidateReadOnly rejects anything that is not a single read-only retrieval.
// The dialogue agent authors these queries, so the check assumes hostility.
func ValidateReadOnly(query string) error {
	if query == "" {
		return fmt.Errorf("%w: empty query", contractx.ErrQueryRejected)
	}

	stmt := strings.TrimSuffix(query, ";")
	if strings.Contains(stmt, ";") {
		return fmt.Errorf("%w: multiple statements are not allowed", contractx.ErrQueryRejected)
	}

	fields := strings.Fields(strings.ToLower(stmt))
	if len(fields) == 0 || fields[0] != "select" {
		return fmt.Errorf("%w: only SELECT queries are allowed", contractx.ErrQueryRejected)
	}
	if m := forbiddenVerbRe.FindString(stmt); m != "" {
		return fmt.Errorf("%w: %s is not allowed", contractx.ErrQueryRejected, strings.ToUpper(m))
	}
	return nil
}
