package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

var productCSVHeader = []string{"Product Name", "Category", "Brand", "Price in Rupees", "Stock", "Description"}

// SeedCatalog loads the product CSV into the inventory table. Existing rows
// are upserted by name, so re-running against the same file is harmless.
func SeedCatalog(ctx context.Context, db *bun.DB, csvPath string) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open product csv: %w", err)
	}
	defer f.Close()

	rows, err := parseProductCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", csvPath, err)
	}
	if len(rows) == 0 {
		return nil
	}

	_, err = db.NewInsert().Model(&rows).
		On(`CONFLICT ("Product Name") DO UPDATE`).
		Set(`"Category" = EXCLUDED."Category"`).
		Set(`"Brand" = EXCLUDED."Brand"`).
		Set(`"Price in Rupees" = EXCLUDED."Price in Rupees"`).
		Set(`"Stock" = EXCLUDED."Stock"`).
		Set(`"Description" = EXCLUDED."Description"`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("seed inventory: %w", err)
	}
	log.Info().Int("products", len(rows)).Str("file", csvPath).Msg("catalog seeded")
	return nil
}

func parseProductCSV(r io.Reader) ([]productRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(productCSVHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range productCSVHeader {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("unexpected header column %d: %q (want %q)", i, header[i], want)
		}
	}

	var rows []productRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad price %q", line, rec[3])
		}
		stock, err := strconv.Atoi(strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad stock %q", line, rec[4])
		}

		name := strings.TrimSpace(rec[0])
		if name == "" {
			return nil, fmt.Errorf("line %d: empty product name", line)
		}
		rows = append(rows, productRow{
			Name:        name,
			Category:    strings.TrimSpace(rec[1]),
			Brand:       strings.TrimSpace(rec[2]),
			Price:       price,
			Stock:       stock,
			Description: strings.TrimSpace(rec[5]),
		})
	}
	return rows, nil
}
