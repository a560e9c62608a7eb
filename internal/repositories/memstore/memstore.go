// internal/repositories/memstore/memstore.go
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

// Store is an in-memory repositories.Store. Transactions are serialized and
// roll back to a snapshot when fn fails. Writes made outside a transaction
// while another one is running are not isolated from its rollback.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *dataset

	// FailOn, when set, is consulted before every write; a non-nil result is
	// returned from that write. Tests use it to inject persistence failures.
	FailOn func(op string) error
}

type dataset struct {
	users       map[uuid.UUID]models.User
	clients     map[uuid.UUID]models.Client
	orders      map[uuid.UUID]models.Order
	items       map[uuid.UUID]models.OrderItem
	attachments map[uuid.UUID]models.Attachment
	inventory   map[uuid.UUID]models.InventoryItem
	ledger      []models.InventoryTransaction
	audit       []models.AuditLog
	errors      []models.ErrorLog
	security    []models.SecurityEvent
}

func newDataset() *dataset {
	return &dataset{
		users:       make(map[uuid.UUID]models.User),
		clients:     make(map[uuid.UUID]models.Client),
		orders:      make(map[uuid.UUID]models.Order),
		items:       make(map[uuid.UUID]models.OrderItem),
		attachments: make(map[uuid.UUID]models.Attachment),
		inventory:   make(map[uuid.UUID]models.InventoryItem),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.clients {
		c.clients[k] = v
	}
	for k, v := range d.orders {
		v.Tags = append(pq.StringArray(nil), v.Tags...)
		c.orders[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.attachments {
		c.attachments[k] = v
	}
	for k, v := range d.inventory {
		c.inventory[k] = v
	}
	c.ledger = append(c.ledger, d.ledger...)
	c.audit = append(c.audit, d.audit...)
	c.errors = append(c.errors, d.errors...)
	c.security = append(c.security, d.security...)
	return c
}

func New() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) Orders() repositories.OrderRepository         { return &orderRepo{s} }
func (s *Store) OrderItems() repositories.OrderItemRepository { return &orderItemRepo{s} }
func (s *Store) Inventory() repositories.InventoryRepository  { return &inventoryRepo{s} }
func (s *Store) Audit() repositories.AuditRepository          { return &auditRepo{s} }
func (s *Store) Users() repositories.UserRepository           { return &userRepo{s} }
func (s *Store) Clients() repositories.ClientRepository       { return &clientRepo{s} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repositories.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	committed := false
	defer func() {
		if !committed {
			s.mu.Lock()
			s.data = snapshot
			s.mu.Unlock()
		}
	}()

	if err := fn(s); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) checkWrite(op string) error {
	if s.FailOn != nil {
		return s.FailOn(op)
	}
	return nil
}

// Snapshot accessors used by tests.

func (s *Store) Ledger() []models.InventoryTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.InventoryTransaction(nil), s.data.ledger...)
}

func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.data.audit...)
}

func (s *Store) ErrorLogs() []models.ErrorLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ErrorLog(nil), s.data.errors...)
}

func (s *Store) SecurityEvents() []models.SecurityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SecurityEvent(nil), s.data.security...)
}

func stamp(base *models.BaseModel, now time.Time) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func paginate[T any](rows []T, params utils.PaginationParams) []T {
	if params.Limit <= 0 {
		return rows
	}
	start := params.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// orders

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	if err := r.s.checkWrite("orders.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.orders {
		if existing.OrderNumber == order.OrderNumber {
			return repositories.ErrDuplicate
		}
	}

	now := time.Now()
	stamp(&order.BaseModel, now)
	for i := range order.Items {
		item := &order.Items[i]
		stamp(&item.BaseModel, now)
		item.OrderID = order.ID
		for _, stage := range models.ProductionStages {
			if item.StageStatus(stage) == "" {
				item.SetStageStatus(stage, models.StageStatusPending)
			}
		}
		stored := *item
		stored.Order, stored.Inventory = nil, nil
		r.s.data.items[item.ID] = stored
	}
	if order.Status == "" {
		order.Status = models.OrderStatusNew
	}
	if order.Priority == "" {
		order.Priority = models.OrderPriorityNormal
	}

	stored := *order
	stored.Items, stored.Attachments, stored.Client = nil, nil, nil
	stored.Tags = append(pq.StringArray(nil), order.Tags...)
	r.s.data.orders[order.ID] = stored
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.data.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	full := r.assemble(order)
	for _, item := range r.s.data.items {
		if item.OrderID == id {
			full.Items = append(full.Items, item)
		}
	}
	sort.Slice(full.Items, func(i, j int) bool { return full.Items[i].CreatedAt.Before(full.Items[j].CreatedAt) })
	return &full, nil
}

// assemble attaches client and attachments; callers hold the read lock.
func (r *orderRepo) assemble(order models.Order) models.Order {
	if client, ok := r.s.data.clients[order.ClientID]; ok {
		c := client
		order.Client = &c
	}
	for _, a := range r.s.data.attachments {
		if a.OrderID == order.ID {
			order.Attachments = append(order.Attachments, a)
		}
	}
	return order
}

func (r *orderRepo) List(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []models.Order
	for _, order := range r.s.data.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && order.Priority != *filter.Priority {
			continue
		}
		if filter.ClientID != nil && order.ClientID != *filter.ClientID {
			continue
		}
		if filter.Tag != "" && !hasTag(order.Tags, filter.Tag) {
			continue
		}
		if filter.Search != "" && !containsFold(order.OrderNumber, filter.Search) {
			continue
		}
		rows = append(rows, r.assemble(order))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return paginate(rows, filter.PaginationParams), int64(len(rows)), nil
}

func hasTag(tags pq.StringArray, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return r.update(id, "orders.update_status", func(o *models.Order) { o.Status = status })
}

func (r *orderRepo) UpdatePriority(ctx context.Context, id uuid.UUID, priority models.OrderPriority) error {
	return r.update(id, "orders.update_priority", func(o *models.Order) { o.Priority = priority })
}

func (r *orderRepo) update(id uuid.UUID, op string, mutate func(o *models.Order)) error {
	if err := r.s.checkWrite(op); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.data.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	mutate(&order)
	order.UpdatedAt = time.Now()
	r.s.data.orders[id] = order
	return nil
}

func (r *orderRepo) AddAttachment(ctx context.Context, attachment *models.Attachment) error {
	if err := r.s.checkWrite("orders.add_attachment"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.orders[attachment.OrderID]; !ok {
		return repositories.ErrNotFound
	}
	stamp(&attachment.BaseModel, time.Now())
	r.s.data.attachments[attachment.ID] = *attachment
	return nil
}

func (r *orderRepo) CountProduction(ctx context.Context, scanLimit int) (repositories.ProductionCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var counts repositories.ProductionCounts
	for _, order := range r.s.data.orders {
		if counts.Active >= int64(scanLimit) {
			break
		}
		if order.Status != models.OrderStatusProduction {
			continue
		}
		counts.Active++
		if order.Priority.IsUrgent() {
			counts.Urgent++
		}
	}
	return counts, nil
}

func (r *orderRepo) ListProductionItems(ctx context.Context, limit int) ([]models.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []models.OrderItem{}
	for _, item := range r.s.data.items {
		order, ok := r.s.data.orders[item.OrderID]
		if !ok || order.Status != models.OrderStatusProduction {
			continue
		}
		full := r.assemble(order)
		item.Order = &full
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		oi, oj := items[i].Order, items[j].Order
		if !oi.CreatedAt.Equal(oj.CreatedAt) {
			return oi.CreatedAt.After(oj.CreatedAt)
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// order items

type orderItemRepo struct{ s *Store }

func (r *orderItemRepo) FindWithOrder(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.data.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if order, ok := r.s.data.orders[item.OrderID]; ok {
		o := order
		item.Order = &o
	}
	return &item, nil
}

func (r *orderItemRepo) UpdateStageStatus(ctx context.Context, id uuid.UUID, stage models.ProductionStage, status models.StageStatus) (int64, error) {
	if err := r.s.checkWrite("order_items.update_stage"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.data.items[id]
	if !ok {
		return 0, nil
	}
	item.SetStageStatus(stage, status)
	r.s.data.items[id] = item
	return 1, nil
}

// inventory

type inventoryRepo struct{ s *Store }

func (r *inventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	if err := r.s.checkWrite("inventory.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.inventory {
		if existing.SKU == item.SKU {
			return repositories.ErrDuplicate
		}
	}
	stamp(&item.BaseModel, time.Now())
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	r.s.data.inventory[item.ID] = *item
	return nil
}

func (r *inventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.data.inventory[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &item, nil
}

func (r *inventoryRepo) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range ids {
		if _, ok := r.s.data.inventory[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (r *inventoryRepo) List(ctx context.Context, filter repositories.InventoryFilter) ([]models.InventoryItem, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []models.InventoryItem
	for _, item := range r.s.data.inventory {
		if filter.Search != "" && !containsFold(item.Name, filter.Search) && !containsFold(item.SKU, filter.Search) {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.LowStock && item.Quantity > item.LowStockThreshold {
			continue
		}
		rows = append(rows, item)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return paginate(rows, filter.PaginationParams), int64(len(rows)), nil
}

func (r *inventoryRepo) Decrement(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	return r.adjust(id, "inventory.decrement", func(q int) int {
		if q-amount < 0 {
			return 0
		}
		return q - amount
	})
}

func (r *inventoryRepo) Increment(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	return r.adjust(id, "inventory.increment", func(q int) int { return q + amount })
}

func (r *inventoryRepo) adjust(id uuid.UUID, op string, next func(int) int) (int, error) {
	if err := r.s.checkWrite(op); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.data.inventory[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	item.Quantity = next(item.Quantity)
	item.UpdatedAt = time.Now()
	r.s.data.inventory[id] = item
	return item.Quantity, nil
}

func (r *inventoryRepo) CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	if err := r.s.checkWrite("inventory.create_transaction"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	r.s.data.ledger = append(r.s.data.ledger, *txn)
	return nil
}

func (r *inventoryRepo) ListTransactions(ctx context.Context, itemID uuid.UUID, params utils.PaginationParams) ([]models.InventoryTransaction, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []models.InventoryTransaction
	for i := len(r.s.data.ledger) - 1; i >= 0; i-- {
		if r.s.data.ledger[i].ItemID == itemID {
			rows = append(rows, r.s.data.ledger[i])
		}
	}
	return paginate(rows, params), int64(len(rows)), nil
}

// audit

type auditRepo struct{ s *Store }

func (r *auditRepo) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if err := r.s.checkWrite("audit.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.s.data.audit = append(r.s.data.audit, *entry)
	return nil
}

func (r *auditRepo) ListAuditLogs(ctx context.Context, filter repositories.AuditFilter) ([]models.AuditLog, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []models.AuditLog
	for i := len(r.s.data.audit) - 1; i >= 0; i-- {
		entry := r.s.data.audit[i]
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && entry.EntityID != filter.EntityID {
			continue
		}
		if filter.UserID != nil && (entry.UserID == nil || *entry.UserID != *filter.UserID) {
			continue
		}
		rows = append(rows, entry)
	}
	return paginate(rows, filter.PaginationParams), int64(len(rows)), nil
}

func (r *auditRepo) CreateErrorLog(ctx context.Context, entry *models.ErrorLog) error {
	if err := r.s.checkWrite("audit.create_error"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ID = uuid.New()
	r.s.data.errors = append(r.s.data.errors, *entry)
	return nil
}

func (r *auditRepo) CreateSecurityEvent(ctx context.Context, event *models.SecurityEvent) error {
	if err := r.s.checkWrite("audit.create_security"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event.ID = uuid.New()
	r.s.data.security = append(r.s.data.security, *event)
	return nil
}

// users

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.s.checkWrite("users.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.users {
		if strings.EqualFold(existing.Email, user.Email) || existing.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	stamp(&user.BaseModel, time.Now())
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.data.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.data.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *userRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.data.users {
		if strings.EqualFold(user.Email, email) || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	for _, user := range r.s.data.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *userRepo) List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []models.User
	for _, user := range r.s.data.users {
		if params.Search != "" && !containsFold(user.Username, params.Search) &&
			!containsFold(user.Email, params.Search) && !containsFold(user.FullName, params.Search) {
			continue
		}
		rows = append(rows, user)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return paginate(rows, params), int64(len(rows)), nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return r.update(id, "users.update_role", func(u *models.User) { u.Role = role })
}

func (r *userRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error {
	return r.update(id, "users.update_status", func(u *models.User) { u.Status = status })
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, "users.touch_last_login", func(u *models.User) { u.LastLoginAt = &at })
}

func (r *userRepo) update(id uuid.UUID, op string, mutate func(u *models.User)) error {
	if err := r.s.checkWrite(op); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.data.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	mutate(&user)
	user.UpdatedAt = time.Now()
	r.s.data.users[id] = user
	return nil
}

// clients

type clientRepo struct{ s *Store }

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	if err := r.s.checkWrite("clients.create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stamp(&client.BaseModel, time.Now())
	r.s.data.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	client, ok := r.s.data.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &client, nil
}

func (r *clientRepo) List(ctx context.Context, params utils.PaginationParams) ([]models.Client, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []models.Client
	for _, client := range r.s.data.clients {
		if params.Search != "" && !containsFold(client.Name, params.Search) &&
			!containsFold(client.Company, params.Search) && !containsFold(client.Email, params.Search) {
			continue
		}
		rows = append(rows, client)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return paginate(rows, params), int64(len(rows)), nil
}

var _ repositories.Store = (*Store)(nil)
