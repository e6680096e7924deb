package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

func (c *Conf) InsertProduct(ctx context.Context, np NewProduct) (Product, error) {
	query := `
		INSERT INTO products (name, description, price, stock_quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	err := c.db.QueryRowContext(ctx, query, np.Name, np.Description, np.Price, np.StockQuantity).Scan(&id)
	if err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}

	return Product{
		ID:            id,
		Name:          np.Name,
		Description:   np.Description,
		Price:         np.Price,
		StockQuantity: np.StockQuantity,
	}, nil
}

func (c *Conf) GetProductByID(ctx context.Context, id int64) (Product, error) {
	query := `
		SELECT id, name, description, price, stock_quantity
		FROM products
		WHERE id = $1
	`
	var p Product
	err := c.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity)
	if err != nil {
		return Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (c *Conf) ListProducts(ctx context.Context) ([]Product, error) {
	query := `
		SELECT id, name, description, price, stock_quantity
		FROM products
		ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// UpdateProductInDB applies a patch: only non-nil fields of up overwrite the
// stored row. Returns the row as persisted after the update.
func (c *Conf) UpdateProductInDB(ctx context.Context, id int64, up UpdateProduct) (Product, error) {
	var p Product
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		querySelect := `
			SELECT id, name, description, price, stock_quantity
			FROM products
			WHERE id = $1
			FOR UPDATE
		`
		err := tx.QueryRowContext(ctx, querySelect, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity)
		if err != nil {
			return fmt.Errorf("failed to query product: %w", err)
		}

		if up.Name != nil {
			p.Name = up.Name
		}
		if up.Description != nil {
			p.Description = up.Description
		}
		if up.Price != nil {
			p.Price = up.Price
		}
		if up.StockQuantity != nil {
			p.StockQuantity = up.StockQuantity
		}

		queryUpdate := `
			UPDATE products
			SET name = $1, description = $2, price = $3, stock_quantity = $4
			WHERE id = $5
		`
		_, err = tx.ExecContext(ctx, queryUpdate, p.Name, p.Description, p.Price, p.StockQuantity, id)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// DeleteProductFromDB removes the row. Referencing order items are not
// checked; the foreign key is left to the database.
func (c *Conf) DeleteProductFromDB(ctx context.Context, id int64) error {
	query := `
		DELETE FROM products
		WHERE id = $1
		RETURNING id
	`
	var deletedID int64
	err := c.db.QueryRowContext(ctx, query, id).Scan(&deletedID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		er := tx.Rollback()
		if er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return fmt.Errorf("failed to execute withTx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}
