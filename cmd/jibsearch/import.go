package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson"
)

// readCatalogFile parses a JSON array of documents. Each element is decoded as
// relaxed extended JSON so integers stay integers and $oid/$date values keep
// their BSON types.
func readCatalogFile(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) ([]map[string]interface{}, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("expected a JSON array of products: %w", err)
	}

	docs := make([]map[string]interface{}, 0, len(elements))
	for i, raw := range elements {
		var doc bson.M
		if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		docs = append(docs, map[string]interface{}(doc))
	}
	return docs, nil
}
