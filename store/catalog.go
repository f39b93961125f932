package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

// The inventory table keeps the human-readable column names from the product
// CSV because the dialogue agent writes its SELECT statements against them.
type productRow struct {
	bun.BaseModel `bun:"table:inventory"`

	Name        string  `bun:"Product Name,pk"`
	Category    string  `bun:"Category,notnull"`
	Brand       string  `bun:"Brand,notnull"`
	Price       float64 `bun:"Price in Rupees,notnull"`
	Stock       int     `bun:"Stock,notnull"`
	Description string  `bun:"Description"`
}

func (r *productRow) toItem() contractx.InventoryItem {
	return contractx.InventoryItem{
		Name:        r.Name,
		Category:    r.Category,
		Brand:       r.Brand,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
	}
}

// Catalog is the Postgres implementation of contract.Catalog.
type Catalog struct {
	db *bun.DB
}

func NewCatalog(db *bun.DB) *Catalog {
	return &Catalog{db: db}
}

// Select runs an already-validated read-only query and stringifies the result
// set. NULLs come back as empty strings.
func (c *Catalog) Select(ctx context.Context, query string) ([]string, [][]string, error) {
	res, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("run query: %w", err)
	}
	defer res.Close()

	cols, err := res.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	var rows [][]string
	for res.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := res.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, c := range cells {
			row[i] = c.String
		}
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return cols, rows, nil
}

// FindProduct resolves a spoken product name to a catalog row with a
// case-insensitive substring match, retrying with the singular form so that
// "denim jeanss" and "t-shirts" still land.
func (c *Catalog) FindProduct(ctx context.Context, name string) (*contractx.InventoryItem, error) {
	needle := strings.TrimSpace(name)
	if needle == "" {
		return nil, contractx.ErrProductNotFound
	}

	for _, probe := range nameProbes(needle) {
		row := new(productRow)
		err := c.db.NewSelect().Model(row).
			Where(`lower("Product Name") LIKE ?`, "%"+strings.ToLower(probe)+"%").
			OrderExpr(`"Stock" DESC`).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find product: %w", err)
		}
		item := row.toItem()
		return &item, nil
	}
	return nil, contractx.ErrProductNotFound
}

// nameProbes orders the match attempts: the name as spoken, then its singular
// form, then the last word (callers often say "the nike running shoes").
func nameProbes(needle string) []string {
	probes := []string{needle}
	if s := singular(needle); s != needle {
		probes = append(probes, s)
	}
	words := strings.Fields(needle)
	if len(words) > 1 {
		last := words[len(words)-1]
		probes = append(probes, singular(last))
	}
	return probes
}

func singular(w string) string {
	lower := strings.ToLower(w)
	if strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") {
		return w[:len(w)-1]
	}
	return w
}
