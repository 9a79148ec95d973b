package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

func readSchemaMigration(t *testing.T) string {
	t.Helper()

	path := filepath.Join(migrationsDir, "00001_create_store_schema.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read schema migration: %v", err)
	}
	return string(content)
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationCreatesExpectedTables(t *testing.T) {
	contentStr := readSchemaMigration(t)

	expectedTables := []string{
		"users",
		"addresses",
		"categories",
		"products",
		"inventory",
		"inventory_movements",
		"carts",
		"cart_items",
		"orders",
		"order_items",
		"payments",
		"installments",
	}

	for _, tableName := range expectedTables {
		if !strings.Contains(contentStr, "CREATE TABLE "+tableName) {
			t.Errorf("Schema migration does not create table %s", tableName)
		}
		if !strings.Contains(contentStr, "DROP TABLE "+tableName) {
			t.Errorf("Schema migration does not drop table %s in down section", tableName)
		}
	}
}

func TestProductsTableHasRequiredColumns(t *testing.T) {
	contentStr := readSchemaMigration(t)

	requiredColumns := []string{
		"category_id UUID NOT NULL REFERENCES categories(id)",
		"slug TEXT NOT NULL UNIQUE",
		"price DECIMAL(10, 2) NOT NULL",
		"original_price DECIMAL(10, 2)",
		"images JSONB NOT NULL",
		"is_active BOOLEAN NOT NULL",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing required column definition: %s", column)
		}
	}
}

func TestInventoryIsOnePerProduct(t *testing.T) {
	contentStr := readSchemaMigration(t)

	// One inventory row per product, removed with the product
	if !strings.Contains(contentStr, "product_id UUID NOT NULL UNIQUE REFERENCES products(id) ON DELETE CASCADE") {
		t.Error("Inventory table missing unique cascading product reference")
	}
}

func TestSKUUniquenessIgnoresEmptyValues(t *testing.T) {
	contentStr := readSchemaMigration(t)

	if !strings.Contains(contentStr, "CREATE UNIQUE INDEX products_sku_key ON products (sku) WHERE sku <> ''") {
		t.Error("Products table missing partial unique index on sku")
	}
}

func TestUserOwnedRowsCascade(t *testing.T) {
	contentStr := readSchemaMigration(t)

	cascades := []string{
		"user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE",
		"cart_id UUID NOT NULL REFERENCES carts(id) ON DELETE CASCADE",
		"order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE",
		"payment_id UUID NOT NULL REFERENCES payments(id) ON DELETE CASCADE",
	}
	for _, clause := range cascades {
		if !strings.Contains(contentStr, clause) {
			t.Errorf("Schema missing cascade clause: %s", clause)
		}
	}

	// Movement authors are cleared, not deleted with the user
	if !strings.Contains(contentStr, "created_by UUID REFERENCES users(id) ON DELETE SET NULL") {
		t.Error("Inventory movements should keep rows when the author is deleted")
	}
}
