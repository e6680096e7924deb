package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrProductNotFound reports that an order referenced a product id that does
// not exist. Steps already committed for the same request stay persisted.
var ErrProductNotFound = errors.New("product not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

// CreateOrder runs the order placement workflow:
//  1. insert the order row with status Pending and total 0
//  2. per item: load the product, decrement its stock by the requested
//     quantity, insert a line item freezing the product's current price
//  3. re-sum the persisted line items and store the total on the order
//
// Each step commits on its own. A missing product aborts the loop and returns
// ErrProductNotFound; the order row and items inserted before the failure
// remain in the database. Stock is decremented without an availability check,
// so it can go negative. A product id repeated within one request merges into
// a single line item with the quantities added up.
func (c *Conf) CreateOrder(ctx context.Context, no NewOrder) (Order, error) {
	order := Order{
		CustomerName: no.CustomerName,
		OrderDate:    time.Now().UTC(),
		Status:       StatusPending,
	}

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		queryInsertOrder := `
			INSERT INTO orders (customer_name, order_date, total_price, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, queryInsertOrder,
			order.CustomerName, order.OrderDate, 0, order.Status).Scan(&order.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	for _, item := range no.Items {
		err := c.withTx(ctx, func(tx *sql.Tx) error {
			queryPrice := `
				SELECT COALESCE(price, 0)
				FROM products
				WHERE id = $1
			`
			var price float64
			err := tx.QueryRowContext(ctx, queryPrice, item.ProductID).Scan(&price)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
				}
				return fmt.Errorf("failed to query product price: %w", err)
			}

			queryDecrementStock := `
				UPDATE products
				SET stock_quantity = stock_quantity - $1
				WHERE id = $2
			`
			_, err = tx.ExecContext(ctx, queryDecrementStock, item.Quantity, item.ProductID)
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}

			queryInsertItem := `
				INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (order_id, product_id)
				DO UPDATE SET quantity = order_items.quantity + EXCLUDED.quantity,
				              price_at_purchase = EXCLUDED.price_at_purchase
			`
			_, err = tx.ExecContext(ctx, queryInsertItem, order.ID, item.ProductID, item.Quantity, price)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}

			order.Items = append(order.Items, OrderItem{
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				PriceAtPurchase: price,
			})
			return nil
		})
		if err != nil {
			return Order{}, err
		}
	}

	err = c.withTx(ctx, func(tx *sql.Tx) error {
		querySumItems := `
			SELECT COALESCE(SUM(quantity * price_at_purchase), 0)
			FROM order_items
			WHERE order_id = $1
		`
		err := tx.QueryRowContext(ctx, querySumItems, order.ID).Scan(&order.TotalPrice)
		if err != nil {
			return fmt.Errorf("failed to sum order items: %w", err)
		}

		queryUpdateTotal := `
			UPDATE orders
			SET total_price = $1
			WHERE id = $2
		`
		_, err = tx.ExecContext(ctx, queryUpdateTotal, order.TotalPrice, order.ID)
		if err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	return order, nil
}

func (c *Conf) GetOrderByID(ctx context.Context, id int64) (Order, error) {
	queryOrder := `
		SELECT id, customer_name, order_date, total_price, status
		FROM orders
		WHERE id = $1
	`
	var o Order
	err := c.db.QueryRowContext(ctx, queryOrder, id).Scan(&o.ID, &o.CustomerName, &o.OrderDate, &o.TotalPrice, &o.Status)
	if err != nil {
		return Order{}, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := c.findItemsByOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

func (c *Conf) ListOrders(ctx context.Context) ([]Order, error) {
	queryOrders := `
		SELECT id, customer_name, order_date, total_price, status
		FROM orders
		ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, queryOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	index := map[int64]int{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.OrderDate, &o.TotalPrice, &o.Status); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Items = []OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	queryItems := `
		SELECT order_id, product_id, quantity, price_at_purchase
		FROM order_items
		ORDER BY order_id, product_id
	`
	itemRows, err := c.db.QueryContext(ctx, queryItems)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID int64
		var item OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus overwrites the status with whatever the caller supplied.
// There is no fixed set of allowed transitions.
func (c *Conf) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2
		RETURNING id
	`
	var updatedID int64
	err := c.db.QueryRowContext(ctx, query, status, id).Scan(&updatedID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

func (c *Conf) findItemsByOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	query := `
		SELECT product_id, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`
	rows, err := c.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
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
