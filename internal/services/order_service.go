package services

import (
	"fmt"
	"log/slog"

	"artisanhub/internal/models"
	"artisanhub/internal/repositories"
)

// OrderRequest is a buyer's checkout request.
type OrderRequest struct {
	BuyerName  string             `json:"buyer_name" validate:"required"`
	BuyerEmail string             `json:"buyer_email" validate:"required,email"`
	Items      []models.OrderItem `json:"items" validate:"required,min=1,dive"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	artisanRepo repositories.ArtisanRepository
	events      eventEmitter
	lowStock    int
	logger      *slog.Logger
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository,
	artisanRepo repositories.ArtisanRepository, publisher EventPublisher, lowStockThreshold int, logger *slog.Logger) *OrderService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = models.DefaultLowStockThreshold
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		artisanRepo: artisanRepo,
		events:      eventEmitter{publisher: publisher, logger: logger},
		lowStock:    lowStockThreshold,
		logger:      logger,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateOrder checks and decrements stock for every line in one atomic step,
// then stores the order and credits the artisans. Stock is handed back if the
// order cannot be stored.
func (s *OrderService) CreateOrder(req OrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order has no items: %w", ErrInvalidInput)
	}

	// Quantities are summed per product so duplicate lines are checked together.
	requested := make(map[string]int)
	var ids []string
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %s must be positive: %w", item.ProductID, ErrInvalidInput)
		}
		if _, ok := requested[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	products := make(map[string]models.Product, len(ids))
	err := s.productRepo.MutateMany(ids, func(stored map[string]*models.Product) error {
		for _, id := range ids {
			p := stored[id]
			if p.Status != models.StatusActive {
				return fmt.Errorf("product %s is %s: %w", p.Name, p.Status, ErrInsufficientStock)
			}
			if qty := requested[id]; p.StockQuantity < qty {
				return fmt.Errorf("product %s (requested: %d, available: %d): %w",
					p.Name, qty, p.StockQuantity, ErrInsufficientStock)
			}
		}
		for _, id := range ids {
			p := stored[id]
			p.UpdateStock(p.StockQuantity - requested[id])
			products[id] = *p
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot reserve stock: %w", err)
	}

	order := &models.Order{
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		Status:     "pending",
	}
	artisans := make(map[string]struct{})
	for _, item := range req.Items {
		p := products[item.ProductID]
		order.Items = append(order.Items, models.OrderItem{
			ProductID: p.ID,
			ArtisanID: p.ArtisanID,
			Quantity:  item.Quantity,
			Price:     p.Price,
		})
		order.TotalAmount += p.Price * float64(item.Quantity)
		artisans[p.ArtisanID] = struct{}{}
	}

	if err := s.orderRepo.Create(order); err != nil {
		s.releaseStock(ids, requested)
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	for _, id := range ids {
		p := products[id]
		s.events.emitStock(p.ID, p.ArtisanID, p.StockQuantity, s.lowStock)
	}
	for artisanID := range artisans {
		if _, err := s.artisanRepo.Mutate(artisanID, func(a *models.Artisan) error {
			a.IncrementOrders()
			return nil
		}); err != nil {
			s.logger.Warn("failed to update artisan order count", "order_id", order.ID, "artisan_id", artisanID, "error", err)
		}
	}

	s.events.emit(EventOrderCreated, map[string]any{
		"order_id": order.ID,
		"buyer":    order.BuyerEmail,
		"status":   order.Status,
		"total":    order.TotalAmount,
	})
	return order, nil
}

func (s *OrderService) releaseStock(ids []string, requested map[string]int) {
	err := s.productRepo.MutateMany(ids, func(stored map[string]*models.Product) error {
		for _, id := range ids {
			p := stored[id]
			p.UpdateStock(p.StockQuantity + requested[id])
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to release reserved stock", "products", ids, "error", err)
	}
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	if !models.OrderStatuses[status] {
		return fmt.Errorf("invalid order status %q: %w", status, ErrInvalidInput)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}

	s.events.emit(EventOrderStatusChanged, map[string]any{"order_id": id, "status": status})
	return nil
}
