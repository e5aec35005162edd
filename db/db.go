package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Tender (Тендер)
type Tender struct {
	ID          int       `db:"id" json:"id"`
	Client      string    `db:"client" json:"client"`
	AwardDate   time.Time `db:"award_date" json:"award_date"`
	Description string    `db:"description" json:"description"`
}

// TenderPatch — частичное обновление, nil-поля не меняются
type TenderPatch struct {
	Client      *string `json:"client"`
	Description *string `json:"description"`
}

func (s *Storage) CreateTender(ctx context.Context, t *Tender) error {
	query := `
        INSERT INTO tenders (client, description)
        VALUES ($1, $2)
        RETURNING id, award_date`
	return s.db.QueryRowContext(ctx, query, t.Client, t.Description).
		Scan(&t.ID, &t.AwardDate)
}

func (s *Storage) GetTender(ctx context.Context, id int) (*Tender, error) {
	t := &Tender{}
	query := `SELECT * FROM tenders WHERE id=$1`
	err := s.db.GetContext(ctx, t, query, id)
	if err != nil {
		return nil, notFound("tender", id, err)
	}
	return t, nil
}

func (s *Storage) GetTenders(ctx context.Context, limit, offset int) ([]Tender, error) {
	query := `SELECT * FROM tenders ORDER BY id ASC LIMIT $1 OFFSET $2`
	tenders := []Tender{}
	err := s.db.SelectContext(ctx, &tenders, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return tenders, nil
}

func (s *Storage) UpdateTender(ctx context.Context, id int, p *TenderPatch) (*Tender, error) {
	sets := []string{}
	args := []interface{}{}
	if p.Client != nil {
		args = append(args, *p.Client)
		sets = append(sets, fmt.Sprintf("client=$%d", len(args)))
	}
	if p.Description != nil {
		args = append(args, *p.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	if len(sets) == 0 {
		return s.GetTender(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE tenders SET %s
        WHERE id=$%d
        RETURNING id, client, award_date, description`,
		strings.Join(sets, ", "), len(args))

	t := &Tender{}
	err := s.db.QueryRowxContext(ctx, query, args...).StructScan(t)
	if err != nil {
		return nil, notFound("tender", id, err)
	}
	return t, nil
}

// DeleteTender удаляет тендер вместе с его заказами в одной транзакции
func (s *Storage) DeleteTender(ctx context.Context, id int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE tender_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tenders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Kind: "tender", ID: id}
	}
	return tx.Commit()
}

// Product (Продукт)
type Product struct {
	ID            int     `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	SKU           string  `db:"sku" json:"sku"`
	UnitSalePrice float64 `db:"unit_sale_price" json:"unit_sale_price"`
	UnitCost      float64 `db:"unit_cost" json:"unit_cost"`
	Description   string  `db:"description" json:"description"`
}

type ProductPatch struct {
	Name          *string  `json:"name"`
	SKU           *string  `json:"sku"`
	UnitSalePrice *float64 `json:"unit_sale_price"`
	UnitCost      *float64 `json:"unit_cost"`
	Description   *string  `json:"description"`
}

func (s *Storage) CreateProduct(ctx context.Context, p *Product) error {
	query := `
        INSERT INTO products (name, sku, unit_sale_price, unit_cost, description)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		p.Name, p.SKU, p.UnitSalePrice, p.UnitCost, p.Description).
		Scan(&p.ID)
	if err != nil {
		return duplicateKey("product", p.SKU, err)
	}
	return nil
}

func (s *Storage) GetProduct(ctx context.Context, id int) (*Product, error) {
	p := &Product{}
	query := `SELECT * FROM products WHERE id=$1`
	err := s.db.GetContext(ctx, p, query, id)
	if err != nil {
		return nil, notFound("product", id, err)
	}
	return p, nil
}

// GetProductBySKU ищет продукт по натуральному ключу SKU; nil если не найден
func (s *Storage) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	p := &Product{}
	query := `SELECT * FROM products WHERE sku=$1`
	err := s.db.GetContext(ctx, p, query, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (s *Storage) GetProducts(ctx context.Context, limit, offset int) ([]Product, error) {
	query := `SELECT * FROM products ORDER BY id ASC LIMIT $1 OFFSET $2`
	products := []Product{}
	err := s.db.SelectContext(ctx, &products, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Storage) UpdateProduct(ctx context.Context, id int, p *ProductPatch) (*Product, error) {
	sets := []string{}
	args := []interface{}{}
	if p.Name != nil {
		args = append(args, *p.Name)
		sets = append(sets, fmt.Sprintf("name=$%d", len(args)))
	}
	if p.SKU != nil {
		args = append(args, *p.SKU)
		sets = append(sets, fmt.Sprintf("sku=$%d", len(args)))
	}
	if p.UnitSalePrice != nil {
		args = append(args, *p.UnitSalePrice)
		sets = append(sets, fmt.Sprintf("unit_sale_price=$%d", len(args)))
	}
	if p.UnitCost != nil {
		args = append(args, *p.UnitCost)
		sets = append(sets, fmt.Sprintf("unit_cost=$%d", len(args)))
	}
	if p.Description != nil {
		args = append(args, *p.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	if len(sets) == 0 {
		return s.GetProduct(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE products SET %s
        WHERE id=$%d
        RETURNING id, name, sku, unit_sale_price, unit_cost, description`,
		strings.Join(sets, ", "), len(args))

	updated := &Product{}
	err := s.db.QueryRowxContext(ctx, query, args...).StructScan(updated)
	if err != nil {
		if p.SKU != nil {
			err = duplicateKey("product", *p.SKU, err)
		}
		return nil, notFound("product", id, err)
	}
	return updated, nil
}

// DeleteProduct не каскадирует: заказы с этим продуктом остаются
func (s *Storage) DeleteProduct(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Kind: "product", ID: id}
	}
	return nil
}

// Order (Заказ)
type Order struct {
	ID              int `db:"id" json:"id"`
	TenderID        int `db:"tender_id" json:"tender_id"`
	ProductID       int `db:"product_id" json:"product_id"`
	AwardedQuantity int `db:"awarded_quantity" json:"awarded_quantity"`
}

type OrderPatch struct {
	TenderID        *int `json:"tender_id"`
	ProductID       *int `json:"product_id"`
	AwardedQuantity *int `json:"awarded_quantity"`
}

func (s *Storage) CreateOrder(ctx context.Context, o *Order) error {
	query := `
        INSERT INTO orders (tender_id, product_id, awarded_quantity)
        VALUES ($1, $2, $3)
        RETURNING id`
	return s.db.QueryRowContext(ctx, query, o.TenderID, o.ProductID, o.AwardedQuantity).
		Scan(&o.ID)
}

func (s *Storage) GetOrder(ctx context.Context, id int) (*Order, error) {
	o := &Order{}
	query := `SELECT * FROM orders WHERE id=$1`
	err := s.db.GetContext(ctx, o, query, id)
	if err != nil {
		return nil, notFound("order", id, err)
	}
	return o, nil
}

func (s *Storage) GetOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	query := `SELECT * FROM orders ORDER BY id ASC LIMIT $1 OFFSET $2`
	orders := []Order{}
	err := s.db.SelectContext(ctx, &orders, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Storage) GetOrdersByTender(ctx context.Context, tenderID int) ([]Order, error) {
	query := `SELECT * FROM orders WHERE tender_id=$1 ORDER BY id ASC`
	orders := []Order{}
	err := s.db.SelectContext(ctx, &orders, query, tenderID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Storage) UpdateOrder(ctx context.Context, id int, p *OrderPatch) (*Order, error) {
	sets := []string{}
	args := []interface{}{}
	if p.TenderID != nil {
		args = append(args, *p.TenderID)
		sets = append(sets, fmt.Sprintf("tender_id=$%d", len(args)))
	}
	if p.ProductID != nil {
		args = append(args, *p.ProductID)
		sets = append(sets, fmt.Sprintf("product_id=$%d", len(args)))
	}
	if p.AwardedQuantity != nil {
		args = append(args, *p.AwardedQuantity)
		sets = append(sets, fmt.Sprintf("awarded_quantity=$%d", len(args)))
	}
	if len(sets) == 0 {
		return s.GetOrder(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE orders SET %s
        WHERE id=$%d
        RETURNING id, tender_id, product_id, awarded_quantity`,
		strings.Join(sets, ", "), len(args))

	o := &Order{}
	err := s.db.QueryRowxContext(ctx, query, args...).StructScan(o)
	if err != nil {
		return nil, notFound("order", id, err)
	}
	return o, nil
}

func (s *Storage) DeleteOrder(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Kind: "order", ID: id}
	}
	return nil
}

// DeleteAllOrders очищает таблицу заказов (используется при повторном засеве)
func (s *Storage) DeleteAllOrders(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Storage) CountOrders(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM orders`
	err := s.db.GetContext(ctx, &count, query)
	return count, err
}
