package sqlite

// schemaVersion is stored in PRAGMA user_version. A database created by any
// other version is refused rather than migrated.
const schemaVersion = 1

// Schema DDL for all tables.
const (
	createConfig = `CREATE TABLE config (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at TEXT NOT NULL
);`

	createProducts = `CREATE TABLE products (
    code TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT ''
);`

	createInventories = `CREATE TABLE inventories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_number TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    total_items INTEGER NOT NULL DEFAULT 0
);`

	createInventoryItems = `CREATE TABLE inventory_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    inventory_id INTEGER NOT NULL,
    raw_barcode TEXT NOT NULL CHECK (length(raw_barcode) = 39),
    product_code TEXT NOT NULL,
    weight TEXT NOT NULL,
    units TEXT NOT NULL,
    batch TEXT NOT NULL,
    consecutive TEXT NOT NULL,
    scanned_at TEXT NOT NULL,
    FOREIGN KEY (inventory_id) REFERENCES inventories(id) ON DELETE CASCADE
);`

	// createProductsStage mirrors createProducts; ReplaceCatalog fills it
	// and renames it over products.
	createProductsStage = `CREATE TABLE products_stage (
    code TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT ''
);`
)

// Index DDL for common queries.
const (
	idxInventoriesCreated = `CREATE INDEX idx_inventories_created ON inventories(created_at);`
	idxItemsInventory     = `CREATE INDEX idx_inventory_items_inventory ON inventory_items(inventory_id, id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createConfig,
	createProducts,
	createInventories,
	createInventoryItems,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxInventoriesCreated,
	idxItemsInventory,
}
