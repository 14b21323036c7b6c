package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseCatalog(t *testing.T) {
	data := []byte(`[
		{"_id": {"$oid": "65a1b2c3d4e5f60718293a4b"}, "name": "ASUS TUF A15", "sellprice": 25900, "price": 29900.5, "category": "โน้ตบุ๊ค"},
		{"name": "Ryzen 5 7600", "sellprice": "6,290", "tags": ["cpu", "am5"]}
	]`)

	docs, err := parseCatalog(data)

	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.IsType(t, primitive.ObjectID{}, docs[0]["_id"])
	assert.Equal(t, int32(25900), docs[0]["sellprice"])
	assert.Equal(t, 29900.5, docs[0]["price"])
	assert.Equal(t, "โน้ตบุ๊ค", docs[0]["category"])

	assert.Equal(t, 6290, domain.RawProduct(docs[1]).Int("sellprice"))
}

func TestParseCatalog_Errors(t *testing.T) {
	_, err := parseCatalog([]byte(`{"name": "not an array"}`))
	assert.Error(t, err)

	_, err = parseCatalog([]byte(`[{"price": {"$numberInt": "x"}}]`))
	assert.Error(t, err)
}

func TestReadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "a"}, {"name": "b"}]`), 0o600))

	docs, err := readCatalogFile(path)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	_, err = readCatalogFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
