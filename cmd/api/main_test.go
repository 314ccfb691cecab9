package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// El middleware de swagger entra en pánico si el archivo del spec no existe,
// así que el binario debe distribuirse junto con docs/swagger.json. Este test
// verifica que el archivo existe, es JSON válido y documenta las rutas
// principales de la API.
func TestSwaggerSpec_ExisteYDocumentaLasRutas(t *testing.T) {
	// El spec vive relativo a la raíz del repo, no al paquete.
	raw, err := os.ReadFile(filepath.Join("..", "..", swaggerSpecFile))
	require.NoError(t, err, "docs/swagger.json debe distribuirse con el binario")

	var spec struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(raw, &spec), "el spec debe ser JSON válido")
	assert.Equal(t, "2.0", spec.Swagger)

	rutas := []string{
		"/health",
		"/api/products",
		"/api/products/low-stock",
		"/api/products/expiring",
		"/api/products/{id}",
		"/api/categories",
		"/api/suppliers",
		"/api/stock-transactions",
		"/api/stock-transactions/types",
		"/api/stock-transactions/summary",
		"/api/stock-transactions/{id}",
		"/api/stock-transactions/{id}/process",
	}
	for _, ruta := range rutas {
		assert.Contains(t, spec.Paths, ruta, "ruta %s no documentada", ruta)
	}
}
