package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"bidmanager/db"
	"bidmanager/internal/handlers"
)

// Фиксированное зерно делает повторные засевы воспроизводимыми
const randSeed = 42

const (
	existingReadCap = 100
	minQuantity     = 5
	maxQuantity     = 50
)

type Storage interface {
	CreateTender(ctx context.Context, t *db.Tender) error
	GetTender(ctx context.Context, id int) (*db.Tender, error)
	GetTenders(ctx context.Context, limit, offset int) ([]db.Tender, error)

	CreateProduct(ctx context.Context, p *db.Product) error
	GetProduct(ctx context.Context, id int) (*db.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*db.Product, error)
	GetProducts(ctx context.Context, limit, offset int) ([]db.Product, error)

	CreateOrder(ctx context.Context, o *db.Order) error
	CountOrders(ctx context.Context) (int, error)
	DeleteAllOrders(ctx context.Context) (int, error)
}

// Seeder идемпотентно наполняет хранилище данными из внешнего источника,
// с фолбэком на встроенные сэмплы
type Seeder struct {
	store   Storage
	samples SampleSource

	// Ожидаемое число заказов на тендер для проверки недозасева
	OrdersPerTender int
}

func New(store Storage, samples SampleSource) *Seeder {
	return &Seeder{
		store:           store,
		samples:         samples,
		OrdersPerTender: 2,
	}
}

// Run засевает продукты, тендеры и заказы — именно в этом порядке,
// заказы зависят от двух первых. Ошибка одной записи не прерывает остальные.
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("Starting database seeding...")

	rng := rand.New(rand.NewSource(randSeed))

	products, err := s.ensureProducts(ctx)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	tenders, err := s.ensureTenders(ctx)
	if err != nil {
		return fmt.Errorf("seed tenders: %w", err)
	}

	orders, err := s.ensureOrders(ctx, rng, tenders, products)
	if err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}

	log.Printf("Seeding completed: %d products, %d tenders, %d orders",
		len(products), len(tenders), len(orders))
	return nil
}

// ensureProducts засевает продукты, если их нет; иначе читает существующие
// (до 100 штук) как вход для заказов
func (s *Seeder) ensureProducts(ctx context.Context) ([]db.Product, error) {
	existing, err := s.store.GetProducts(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		log.Println("Products already exist. Skipping product seeding.")
		return s.store.GetProducts(ctx, existingReadCap, 0)
	}
	log.Println("Seeding products...")
	return s.seedProducts(ctx), nil
}

func (s *Seeder) ensureTenders(ctx context.Context) ([]db.Tender, error) {
	existing, err := s.store.GetTenders(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		log.Println("Tenders already exist. Skipping tender seeding.")
		return s.store.GetTenders(ctx, existingReadCap, 0)
	}
	log.Println("Seeding tenders...")
	return s.seedTenders(ctx), nil
}

// seedProducts возвращает реально созданные продукты
func (s *Seeder) seedProducts(ctx context.Context) []db.Product {
	log.Println("Fetching product samples...")
	raw := s.samples.ProductSamples(ctx)

	var candidates []db.Product
	if len(raw) == 0 {
		candidates = fallbackProducts()
	} else {
		for _, rec := range raw {
			sku := stringField(rec, "sku")
			title := stringField(rec, "title")
			cost, ok := floatField(rec, "cost")
			if sku == "" || title == "" || !ok || cost == 0 {
				log.Printf("Skipping product with missing fields: %v", rec)
				continue
			}

			description := stringField(rec, "description")
			if description == "" {
				description = fmt.Sprintf("Product SKU: %s", sku)
			}

			candidates = append(candidates, db.Product{
				Name:          title,
				SKU:           sku,
				UnitCost:      cost,
				UnitSalePrice: cost * 1.4, // наценка 40% поверх себестоимости
				Description:   description,
			})
		}
	}

	created := []db.Product{}
	for _, p := range candidates {
		existing, err := s.store.GetProductBySKU(ctx, p.SKU)
		if err != nil {
			log.Printf("Error creating product %s: %v", p.Name, err)
			continue
		}
		if existing != nil {
			continue
		}
		if err := s.store.CreateProduct(ctx, &p); err != nil {
			log.Printf("Error creating product %s: %v", p.Name, err)
			continue
		}
		created = append(created, p)
		log.Printf("Created product: %s", p.Name)
	}
	return created
}

func (s *Seeder) seedTenders(ctx context.Context) []db.Tender {
	log.Println("Fetching tender samples...")
	raw := s.samples.TenderSamples(ctx)

	var candidates []db.Tender
	if len(raw) == 0 {
		candidates = fallbackTenders()
	} else {
		for _, rec := range raw {
			client := stringField(rec, "client")
			if client == "" {
				log.Printf("Skipping tender with missing client: %v", rec)
				continue
			}
			candidates = append(candidates, db.Tender{
				Client: client,
				Description: fmt.Sprintf("Tender %s - Created: %s",
					stringField(rec, "id"), stringField(rec, "creation_date")),
			})
		}
	}

	created := []db.Tender{}
	for _, t := range candidates {
		if err := s.store.CreateTender(ctx, &t); err != nil {
			log.Printf("Error creating tender %s: %v", t.Client, err)
			continue
		}
		created = append(created, t)
		log.Printf("Created tender: %s", t.Client)
	}
	return created
}

// ensureOrders засевает заказы, а на повторных запусках лечит недозасев:
// если заказов меньше 50% от ожидаемых (тендеры * OrdersPerTender),
// все заказы удаляются и создаются заново
func (s *Seeder) ensureOrders(ctx context.Context, rng *rand.Rand, tenders []db.Tender, products []db.Product) ([]db.Order, error) {
	total, err := s.store.CountOrders(ctx)
	if err != nil {
		return nil, err
	}

	if total == 0 {
		if len(tenders) == 0 || len(products) == 0 {
			log.Println("Cannot seed orders: missing tenders or products.")
			return nil, nil
		}
		log.Println("Seeding orders for all tenders...")
		return s.seedOrders(ctx, rng, tenders, products), nil
	}

	expected := len(tenders) * s.OrdersPerTender
	if total*2 >= expected {
		log.Printf("Sufficient orders exist (%d). Skipping order seeding.", total)
		return nil, nil
	}

	if len(tenders) == 0 || len(products) == 0 {
		log.Println("Cannot seed orders: missing tenders or products.")
		return nil, nil
	}

	log.Printf("Only %d orders exist, expected ~%d. Creating more orders...", total, expected)
	deleted, err := s.store.DeleteAllOrders(ctx)
	if err != nil {
		log.Printf("Error clearing orders: %v", err)
		return nil, nil
	}
	log.Printf("Cleared %d existing orders", deleted)
	return s.seedOrders(ctx, rng, tenders, products), nil
}

// seedOrders строит кандидатов и создает каждый заказ как отдельную
// единицу работы. Идентификаторы внешних сэмплов живут в чужом
// пространстве, поэтому при маппинге они игнорируются: родители
// выбираются случайно из существующих
func (s *Seeder) seedOrders(ctx context.Context, rng *rand.Rand, tenders []db.Tender, products []db.Product) []db.Order {
	log.Println("Fetching order samples...")
	raw := s.samples.OrderSamples(ctx)

	var candidates []db.Order
	if len(raw) == 0 {
		log.Println("Using fallback order data - creating orders for all tenders")
		// Каждому тендеру 1..min(3, продуктов) разных продуктов
		for _, t := range tenders {
			count := 1 + rng.Intn(min(3, len(products)))
			for _, pi := range rng.Perm(len(products))[:count] {
				candidates = append(candidates, db.Order{
					TenderID:        t.ID,
					ProductID:       products[pi].ID,
					AwardedQuantity: randomQuantity(rng),
				})
			}
		}
		log.Printf("Generated %d orders for %d tenders", len(candidates), len(tenders))
	} else {
		log.Printf("Processing %d orders from API...", len(raw))
		for _, rec := range raw {
			quantity, ok := intField(rec, "awarded_quantity")
			if !ok || quantity <= 0 {
				quantity = randomQuantity(rng)
			}
			candidates = append(candidates, db.Order{
				TenderID:        tenders[rng.Intn(len(tenders))].ID,
				ProductID:       products[rng.Intn(len(products))].ID,
				AwardedQuantity: quantity,
			})
		}
		log.Printf("Processed %d orders from API data", len(candidates))
	}

	created := []db.Order{}
	for _, o := range candidates {
		if err := handlers.CreateOrderChecked(ctx, s.store, &o); err != nil {
			log.Printf("Error creating order: %v", err)
			continue
		}
		created = append(created, o)
	}
	log.Printf("Successfully created %d orders", len(created))
	return created
}

func randomQuantity(rng *rand.Rand) int {
	return minQuantity + rng.Intn(maxQuantity-minQuantity+1)
}

func fallbackProducts() []db.Product {
	return []db.Product{
		{
			Name:          "Office Chair",
			SKU:           "CHAIR-001",
			UnitSalePrice: 150.0,
			UnitCost:      100.0,
			Description:   "Ergonomic office chair",
		},
		{
			Name:          "Laptop",
			SKU:           "LAPTOP-001",
			UnitSalePrice: 1200.0,
			UnitCost:      800.0,
			Description:   "Business laptop",
		},
		{
			Name:          "Desk",
			SKU:           "DESK-001",
			UnitSalePrice: 300.0,
			UnitCost:      200.0,
			Description:   "Office desk",
		},
	}
}

func fallbackTenders() []db.Tender {
	return []db.Tender{
		{Client: "Ministry of Education", Description: "Office furniture procurement"},
		{Client: "Department of Health", Description: "IT equipment tender"},
		{Client: "City Council", Description: "Municipal office setup"},
	}
}
