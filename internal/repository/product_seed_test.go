package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseSeedFile_CSV(t *testing.T) {
	path := writeSeed(t, "products.csv",
		"id,name,city,price,minOrder,quantity,mobileNo\n"+
			"p-1,Red Onion,Pune,25,10,500,9876543210\n"+
			",Tomato,Nashik,n/a,,80,\n")

	docs, err := ParseSeedFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "p-1", docs[0]["id"])
	assert.Equal(t, "Red Onion", docs[0]["name"])
	assert.Equal(t, float64(25), docs[0]["price"])
	assert.Equal(t, float64(10), docs[0]["minOrder"])
	assert.Equal(t, "9876543210", docs[0]["mobileNo"])

	// unparseable numbers stay as text for readers to coerce
	assert.Equal(t, "n/a", docs[1]["price"])
	assert.Equal(t, "", docs[1]["minOrder"])
	assert.Equal(t, float64(80), docs[1]["quantity"])
}

func TestParseSeedFile_YAML(t *testing.T) {
	path := writeSeed(t, "products.yaml", `
- id: 42
  name: Potato
  city: Agra
  price: 18.5
  quantity: 1200
- name: Garlic
  price: "90"
`)
	docs, err := ParseSeedFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "42", docs[0]["id"])
	assert.Equal(t, 18.5, docs[0]["price"])
	assert.Equal(t, 1200, docs[0]["quantity"])
	assert.Equal(t, "90", docs[1]["price"])
}

func TestParseSeedFile_EmptyYAML(t *testing.T) {
	docs, err := ParseSeedFile(writeSeed(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestParseSeedFile_Unsupported(t *testing.T) {
	_, err := ParseSeedFile(writeSeed(t, "products.json", "[]"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = ParseSeedFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestOverlayOwner(t *testing.T) {
	name, empty := "Sharma Traders", ""
	doc := map[string]interface{}{"wholesalerName": "stale"}
	overlayOwner(doc, &name, &empty)
	assert.Equal(t, "Sharma Traders", doc["wholesalerName"])
	_, hasPhoto := doc["wholesalerPhoto"]
	assert.False(t, hasPhoto)

	doc = map[string]interface{}{}
	overlayOwner(doc, nil, nil)
	assert.Empty(t, doc)
}
