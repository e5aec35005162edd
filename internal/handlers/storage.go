package handlers

import (
	"context"

	"bidmanager/db"
)

type StorageInterface interface {
	CreateTender(ctx context.Context, t *db.Tender) error
	GetTender(ctx context.Context, id int) (*db.Tender, error)
	GetTenders(ctx context.Context, limit, offset int) ([]db.Tender, error)
	UpdateTender(ctx context.Context, id int, p *db.TenderPatch) (*db.Tender, error)
	DeleteTender(ctx context.Context, id int) error

	CreateProduct(ctx context.Context, p *db.Product) error
	GetProduct(ctx context.Context, id int) (*db.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*db.Product, error)
	GetProducts(ctx context.Context, limit, offset int) ([]db.Product, error)
	UpdateProduct(ctx context.Context, id int, p *db.ProductPatch) (*db.Product, error)
	DeleteProduct(ctx context.Context, id int) error

	CreateOrder(ctx context.Context, o *db.Order) error
	GetOrder(ctx context.Context, id int) (*db.Order, error)
	GetOrders(ctx context.Context, limit, offset int) ([]db.Order, error)
	GetOrdersByTender(ctx context.Context, tenderID int) ([]db.Order, error)
	UpdateOrder(ctx context.Context, id int, p *db.OrderPatch) (*db.Order, error)
	DeleteOrder(ctx context.Context, id int) error
}
