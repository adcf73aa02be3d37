package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Repository is the SQLite-backed catalog. Each entry is stored as one row
// holding a JSON blob keyed by slug.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Repository over an existing database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveProduct inserts or replaces a product.
func (r *Repository) SaveProduct(ctx context.Context, p Product) error {
	return r.save(ctx, "products", p.Slug, p)
}

// SaveRecipe inserts or replaces a recipe.
func (r *Repository) SaveRecipe(ctx context.Context, rec Recipe) error {
	return r.save(ctx, "recipes", rec.Slug, rec)
}

func (r *Repository) save(ctx context.Context, table, slug string, entry any) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog entry: %w", err)
	}
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (slug, data, updated_at) VALUES (?, ?, ?)", table)
	if _, err := r.db.ExecContext(ctx, query, slug, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save catalog entry %s: %w", slug, err)
	}
	return nil
}

// Product retrieves a product by slug; a missing slug yields (nil, nil).
func (r *Repository) Product(ctx context.Context, slug string) (*Product, error) {
	var p Product
	if ok, err := r.get(ctx, "products", slug, &p); !ok {
		return nil, err
	}
	return &p, nil
}

// Recipe retrieves a recipe by slug; a missing slug yields (nil, nil).
func (r *Repository) Recipe(ctx context.Context, slug string) (*Recipe, error) {
	var rec Recipe
	if ok, err := r.get(ctx, "recipes", slug, &rec); !ok {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) get(ctx context.Context, table, slug string, out any) (bool, error) {
	query := fmt.Sprintf("SELECT data FROM %s WHERE slug = ?", table)
	var data string
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get catalog entry %s: %w", slug, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal catalog entry %s: %w", slug, err)
	}
	return true, nil
}

// ListProducts returns all products ordered by slug.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.list(ctx, "products")
	if err != nil {
		return nil, err
	}
	var products []Product
	for _, data := range rows {
		var p Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			slog.Warn("skipping unreadable product row", "error", err)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// ListRecipes returns all recipes ordered by slug.
func (r *Repository) ListRecipes(ctx context.Context) ([]Recipe, error) {
	rows, err := r.list(ctx, "recipes")
	if err != nil {
		return nil, err
	}
	var recipes []Recipe
	for _, data := range rows {
		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			slog.Warn("skipping unreadable recipe row", "error", err)
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, nil
}

func (r *Repository) list(ctx context.Context, table string) ([]string, error) {
	query := fmt.Sprintf("SELECT data FROM %s ORDER BY slug", table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var blobs []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		blobs = append(blobs, data)
	}
	return blobs, rows.Err()
}
