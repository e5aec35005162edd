package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"bidmanager/db"
)

// Margin считает прибыль по одному заказу:
// (цена продажи - себестоимость) * присужденное количество.
// Отрицательная маржа допустима и означает убыток.
func Margin(p *db.Product, quantity int) float64 {
	return (p.UnitSalePrice - p.UnitCost) * float64(quantity)
}

var ErrNoOrders = errors.New("no tender registration without products")

type OrderWithDetails struct {
	ID              int         `json:"id"`
	TenderID        int         `json:"tender_id"`
	ProductID       int         `json:"product_id"`
	AwardedQuantity int         `json:"awarded_quantity"`
	Product         *db.Product `json:"product"`
	Margin          float64     `json:"margin"`
}

type TenderWithDetails struct {
	ID          int                `json:"id"`
	Client      string             `json:"client"`
	AwardDate   time.Time          `json:"award_date"`
	Description string             `json:"description"`
	Orders      []OrderWithDetails `json:"orders"`
	TotalMargin float64            `json:"total_margin"`
}

type TenderSummary struct {
	ID           int       `json:"id"`
	Client       string    `json:"client"`
	AwardDate    time.Time `json:"award_date"`
	Description  string    `json:"description"`
	ProductCount int       `json:"product_count"`
	TotalMargin  float64   `json:"total_margin"`
}

// tenderOrderDetails собирает заказы тендера с продуктами и маржой.
// Заказ, чей продукт уже удален, пропускается (и не попадает ни в список,
// ни в сумму, ни в счетчик) — одна висячая ссылка не должна ломать чтение.
func (h *Handler) tenderOrderDetails(ctx context.Context, tenderID int) ([]OrderWithDetails, float64, error) {
	orders, err := h.Store.GetOrdersByTender(ctx, tenderID)
	if err != nil {
		return nil, 0, err
	}

	details := []OrderWithDetails{}
	totalMargin := 0.0
	for _, order := range orders {
		product, err := h.Store.GetProduct(ctx, order.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				log.Printf("skipping order %d: product %d no longer exists", order.ID, order.ProductID)
				continue
			}
			return nil, 0, err
		}
		margin := Margin(product, order.AwardedQuantity)
		totalMargin += margin
		details = append(details, OrderWithDetails{
			ID:              order.ID,
			TenderID:        order.TenderID,
			ProductID:       order.ProductID,
			AwardedQuantity: order.AwardedQuantity,
			Product:         product,
			Margin:          margin,
		})
	}
	return details, totalMargin, nil
}

func (h *Handler) tenderWithDetails(ctx context.Context, tenderID int) (*TenderWithDetails, error) {
	tender, err := h.Store.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	details, totalMargin, err := h.tenderOrderDetails(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	return &TenderWithDetails{
		ID:          tender.ID,
		Client:      tender.Client,
		AwardDate:   tender.AwardDate,
		Description: tender.Description,
		Orders:      details,
		TotalMargin: totalMargin,
	}, nil
}

func (h *Handler) tendersSummary(ctx context.Context, limit, offset int) ([]TenderSummary, error) {
	tenders, err := h.Store.GetTenders(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	summaries := []TenderSummary{}
	for _, tender := range tenders {
		details, totalMargin, err := h.tenderOrderDetails(ctx, tender.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, TenderSummary{
			ID:           tender.ID,
			Client:       tender.Client,
			AwardDate:    tender.AwardDate,
			Description:  tender.Description,
			ProductCount: len(details),
			TotalMargin:  totalMargin,
		})
	}
	return summaries, nil
}

// validateTenderRegistration — бизнес-проверка перед регистрацией:
// у тендера должен быть хотя бы один заказ
func (h *Handler) validateTenderRegistration(ctx context.Context, tenderID int) error {
	orders, err := h.Store.GetOrdersByTender(ctx, tenderID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return ErrNoOrders
	}
	return nil
}

// OrderStore — минимум, нужный для создания заказа с проверкой родителей
type OrderStore interface {
	GetTender(ctx context.Context, id int) (*db.Tender, error)
	GetProduct(ctx context.Context, id int) (*db.Product, error)
	CreateOrder(ctx context.Context, o *db.Order) error
}

// CreateOrderChecked создает заказ, предварительно убедившись, что тендер
// и продукт существуют. Используется и API, и засевом.
func CreateOrderChecked(ctx context.Context, store OrderStore, o *db.Order) error {
	if _, err := store.GetTender(ctx, o.TenderID); err != nil {
		return err
	}
	if _, err := store.GetProduct(ctx, o.ProductID); err != nil {
		return err
	}
	return store.CreateOrder(ctx, o)
}
