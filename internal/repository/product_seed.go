package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// numeric seed columns are stored as JSON numbers when they parse
var numericSeedFields = map[string]bool{"price": true, "minOrder": true, "quantity": true}

// SeedFromFile loads products from a CSV or YAML file and upserts them for
// wholesalerID. Rows without an "id" get a new one.
func (r *ProductRepository) SeedFromFile(ctx context.Context, path, wholesalerID string) (int, error) {
	docs, err := ParseSeedFile(path)
	if err != nil {
		return 0, err
	}

	seeded := 0
	for _, doc := range docs {
		id, _ := doc["id"].(string)
		delete(doc, "id")
		if id == "" {
			id = uuid.NewString()
		}
		doc["wholesalerId"] = wholesalerID
		if err := r.Upsert(ctx, id, wholesalerID, doc); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}

// ParseSeedFile reads product documents from a .csv, .yaml or .yml file
func ParseSeedFile(path string) ([]map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseSeedCSV(f)
	case ".yaml", ".yml":
		return parseSeedYAML(f)
	default:
		return nil, fmt.Errorf("unsupported seed file type %q", filepath.Ext(path))
	}
}

func parseSeedCSV(r io.Reader) ([]map[string]interface{}, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	// Skip header row
	docs := make([]map[string]interface{}, 0, len(records)-1)
	for _, rec := range records[1:] {
		doc := make(map[string]interface{}, len(header))
		for i, value := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			value = strings.TrimSpace(value)
			if numericSeedFields[header[i]] {
				if n, err := strconv.ParseFloat(value, 64); err == nil {
					doc[header[i]] = n
					continue
				}
			}
			doc[header[i]] = value
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func parseSeedYAML(r io.Reader) ([]map[string]interface{}, error) {
	var docs []map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&docs); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read YAML: %w", err)
	}
	for _, doc := range docs {
		if id, ok := doc["id"]; ok {
			doc["id"] = fmt.Sprint(id)
		}
	}
	return docs, nil
}
