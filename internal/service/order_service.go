package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"medstock/internal/model"
	"medstock/internal/repository"
	ws "medstock/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateOrderRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// AdvancePayload carries the stage-specific inputs: the vendor picked by the
// admin at approval, the invoice blob uploaded by the supervisor.
type AdvancePayload struct {
	VendorID     string
	InvoiceImage []byte
}

type StageView struct {
	Stage   string  `json:"stage"`
	Status  bool    `json:"status"`
	Date    *string `json:"date"`
	Message string  `json:"message"`
}

type OrderResponse struct {
	ID           string      `json:"id"`
	ProductID    string      `json:"product_id"`
	ProductName  string      `json:"product_name"`
	Quantity     int         `json:"quantity"`
	TotalAmount  string      `json:"total_amount"`
	Supervisor   string      `json:"supervisor"`
	Vendor       *string     `json:"vendor"`
	PendingStage *string     `json:"pending_stage"`
	Stages       []StageView `json:"stages"`
	CreatedAt    string      `json:"created_at"`
}

// Websocket payload broadcast on every stage change
type TrackingEvent struct {
	Event   string `json:"event"`
	OrderID string `json:"order_id"`
	Stage   string `json:"stage"`
	Date    string `json:"date"`
}

// OrderService is the order lifecycle engine: it creates orders with the
// nine-stage track and advances them strictly in sequence, crediting the
// inventory ledger when the final stage completes.
type OrderService interface {
	Create(ctx context.Context, supervisorID uuid.UUID, req CreateOrderRequest) (OrderResponse, error)
	Advance(ctx context.Context, orderID uuid.UUID, target model.Stage, role string, actorID uuid.UUID, payload AdvancePayload) (OrderResponse, error)
	Get(ctx context.Context, orderID uuid.UUID, role string, actorID uuid.UUID) (OrderResponse, error)
	List(ctx context.Context, role string, actorID uuid.UUID, month, year, page, limit int) ([]OrderResponse, int64, error)
	InvoiceImage(ctx context.Context, orderID uuid.UUID) ([]byte, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	inventoryRepo repository.InventoryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	inventoryRepo repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

func (s *orderService) Create(ctx context.Context, supervisorID uuid.UUID, req CreateOrderRequest) (OrderResponse, error) {
	if req.Quantity <= 0 {
		return OrderResponse{}, ErrInvalidQuantity
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return OrderResponse{}, ErrInvalidProduct
	}

	var order model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, findErr := s.productRepo.FindByID(txCtx, productID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrInvalidProduct
			}
			return fmt.Errorf("failed to find product: %w", findErr)
		}

		now := time.Now()
		order = model.Order{
			ProductID:    product.ID,
			SupervisorID: supervisorID,
			Quantity:     req.Quantity,
			TotalAmount:  product.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
			Stages:       newStageTrack(now),
		}
		if createErr := s.orderRepo.Create(txCtx, &order); createErr != nil {
			return fmt.Errorf("failed to create order: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"product_id": product.ID.String(),
			"quantity":   req.Quantity,
		})
		audit := &model.AuditLog{
			UserID:     &supervisorID,
			Action:     model.ActionCreateOrder,
			EntityID:   order.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})

	if err != nil {
		return OrderResponse{}, err
	}

	return s.Get(ctx, order.ID, model.RoleSupervisor, supervisorID)
}

// newStageTrack builds the nine stage rows for a fresh order with ordered
// already done.
func newStageTrack(now time.Time) []model.OrderStage {
	stages := make([]model.OrderStage, 0, len(model.StageSequence()))
	for i, stage := range model.StageSequence() {
		row := model.OrderStage{
			Stage:    stage,
			Sequence: i,
		}
		if stage == model.StageOrdered {
			row.Status = true
			date := now
			row.Date = &date
		}
		stages = append(stages, row)
	}
	return stages
}

func (s *orderService) Advance(ctx context.Context, orderID uuid.UUID, target model.Stage, role string, actorID uuid.UUID, payload AdvancePayload) (OrderResponse, error) {
	if model.StageIndex(target) < 0 {
		return OrderResponse{}, ErrInvalidStage
	}
	if model.StageActor(target) != role {
		return OrderResponse{}, ErrUnauthorized
	}

	now := time.Now()
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orderRepo.FindByID(txCtx, orderID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to find order: %w", findErr)
		}

		pending := order.PendingStage()
		if pending == nil || *pending != target {
			return ErrOutOfSequence
		}

		switch target {
		case model.StageAdminAccepted:
			if assignErr := s.assignVendor(txCtx, order, payload.VendorID); assignErr != nil {
				return assignErr
			}
		case model.StageInvoiceUploaded:
			if len(payload.InvoiceImage) == 0 {
				return ErrMissingInvoice
			}
			attached, attachErr := s.orderRepo.AttachInvoice(txCtx, orderID, payload.InvoiceImage)
			if attachErr != nil {
				return fmt.Errorf("failed to attach invoice: %w", attachErr)
			}
			if !attached {
				return ErrOutOfSequence
			}
		}

		// Atomic flip; a concurrent advance for the same stage loses here
		done, markErr := s.orderRepo.MarkStageDone(txCtx, orderID, target, now)
		if markErr != nil {
			return fmt.Errorf("failed to advance stage: %w", markErr)
		}
		if !done {
			return ErrOutOfSequence
		}

		// Terminal stage credits the ledger in the same transaction
		if target == model.StageOrderCompleted {
			if creditErr := s.creditInventory(txCtx, order, now); creditErr != nil {
				return creditErr
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"stage": string(target),
			"role":  role,
		})
		audit := &model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionAdvanceStage,
			EntityID:   orderID.String(),
			EntityName: string(target),
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})

	if err != nil {
		return OrderResponse{}, err
	}

	s.broadcast(TrackingEvent{
		Event:   "order_tracking",
		OrderID: orderID.String(),
		Stage:   string(target),
		Date:    now.Format(time.RFC3339),
	})

	return s.Get(ctx, orderID, role, actorID)
}

// assignVendor validates the approval payload and sets the order's vendor
// exactly once.
func (s *orderService) assignVendor(ctx context.Context, order *model.Order, vendorID string) error {
	id, err := uuid.Parse(vendorID)
	if err != nil {
		return ErrInvalidVendor
	}

	vendor, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidVendor
		}
		return fmt.Errorf("failed to find vendor: %w", err)
	}
	if vendor.Role != model.RoleVendor {
		return ErrInvalidVendor
	}

	assigned, err := s.orderRepo.AssignVendor(ctx, order.ID, vendor.ID)
	if err != nil {
		return fmt.Errorf("failed to assign vendor: %w", err)
	}
	if !assigned {
		return ErrOutOfSequence
	}
	return nil
}

// creditInventory finds or creates the (product, supervisor) ledger and
// credits the completed order's quantity with an ADDED history entry. Runs
// inside the completion transaction so the stage flip and the credit commit
// together.
func (s *orderService) creditInventory(ctx context.Context, order *model.Order, now time.Time) error {
	detail := fmt.Sprintf("%d items added to inventory.", order.Quantity)

	inventory, err := s.inventoryRepo.FindByOwner(ctx, order.ProductID, order.SupervisorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find inventory: %w", err)
		}
		inventory = &model.Inventory{
			ProductID:     order.ProductID,
			SupervisorID:  order.SupervisorID,
			TotalQuantity: order.Quantity,
			LeftQuantity:  order.Quantity,
		}
		if createErr := s.inventoryRepo.Create(ctx, inventory); createErr != nil {
			return fmt.Errorf("failed to create inventory: %w", createErr)
		}
	} else {
		credited, creditErr := s.inventoryRepo.Credit(ctx, inventory.ID, order.Quantity)
		if creditErr != nil {
			return fmt.Errorf("failed to credit inventory: %w", creditErr)
		}
		if !credited {
			return fmt.Errorf("inventory %s vanished during credit", inventory.ID)
		}
	}

	entry := &model.InventoryEntry{
		InventoryID: inventory.ID,
		Quantity:    order.Quantity,
		Detail:      detail,
		Kind:        model.EntryKindAdded,
		Date:        now,
	}
	if err := s.inventoryRepo.AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to append inventory entry: %w", err)
	}
	return nil
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID, role string, actorID uuid.UUID) (OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, ErrOrderNotFound
		}
		return OrderResponse{}, fmt.Errorf("failed to find order: %w", err)
	}

	// Supervisors and vendors only see their own orders
	switch role {
	case model.RoleSupervisor:
		if order.SupervisorID != actorID {
			return OrderResponse{}, ErrOrderNotFound
		}
	case model.RoleVendor:
		if order.VendorID == nil || *order.VendorID != actorID {
			return OrderResponse{}, ErrOrderNotFound
		}
	}

	return toOrderResponse(order, role), nil
}

func (s *orderService) List(ctx context.Context, role string, actorID uuid.UUID, month, year, page, limit int) ([]OrderResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	filter := repository.OrderListFilter{Page: page, Limit: limit}
	filter.From, filter.To = monthWindow(month, year)

	switch role {
	case model.RoleSupervisor:
		filter.SupervisorID = &actorID
	case model.RoleVendor:
		filter.VendorID = &actorID
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toOrderResponse(&orders[i], role))
	}
	return res, total, nil
}

func (s *orderService) InvoiceImage(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	image, err := s.orderRepo.InvoiceImage(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load invoice image: %w", err)
	}
	if len(image) == 0 {
		return nil, ErrMissingInvoice
	}
	return image, nil
}

func (s *orderService) broadcast(event TrackingEvent) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case s.hub.Broadcast <- payload:
	default:
	}
}

// monthWindow converts a month/year pair into a [from, to) time range.
// month 0 with a year gives the whole year; both 0 means no window.
func monthWindow(month, year int) (time.Time, time.Time) {
	if year <= 0 {
		return time.Time{}, time.Time{}
	}
	if month >= 1 && month <= 12 {
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		return from, from.AddDate(0, 1, 0)
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
	return from, from.AddDate(1, 0, 0)
}

func toOrderResponse(order *model.Order, role string) OrderResponse {
	stages := make([]StageView, 0, len(order.Stages))
	for _, row := range order.SortedStages() {
		view := StageView{
			Stage:   string(row.Stage),
			Status:  row.Status,
			Message: model.StageMessage(row.Stage, role, row.Status),
		}
		if row.Date != nil {
			d := row.Date.Format(time.RFC3339)
			view.Date = &d
		}
		stages = append(stages, view)
	}

	res := OrderResponse{
		ID:          order.ID.String(),
		ProductID:   order.ProductID.String(),
		ProductName: order.Product.Name,
		Quantity:    order.Quantity,
		TotalAmount: order.TotalAmount.String(),
		Supervisor:  order.Supervisor.Name,
		Stages:      stages,
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
	}
	if pending := order.PendingStage(); pending != nil {
		name := string(*pending)
		res.PendingStage = &name
	}
	if order.Vendor != nil {
		name := order.Vendor.Name
		res.Vendor = &name
	}
	return res
}
