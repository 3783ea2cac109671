package services

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/momandme/tailorshop-api/models"
)

// orderNoPrefix is the human-facing order number scheme: ORD-<year>-<seq>.
const orderNoPrefix = "ORD"

// CreateOrderInput carries the client-supplied fields for a new order.
type CreateOrderInput struct {
	OrderNoFromBook       string              `json:"orderNoFromBook"`
	CustomerName          string              `json:"customerName"`
	Address               string              `json:"address"`
	PhoneNumber           string              `json:"phoneNumber"`
	Category              string              `json:"category"`
	OrderDate             *time.Time          `json:"orderDate"`
	TrialDate             *time.Time          `json:"trialDate"`
	DeliveryDate          *time.Time          `json:"deliveryDate"`
	TotalAmount           *float64            `json:"totalAmount"`
	AdvanceAmountPaid     *float64            `json:"advanceAmountPaid"`
	BalanceAmountReceived *float64            `json:"balanceAmountReceived"`
	Status                string              `json:"status"`
	Measurements          models.Measurements `json:"measurements"`
	Notes                 string              `json:"notes"`
}

// UpdateOrderInput is the optional-field update payload. Only fields that
// are present are merged onto the stored order; the balance is then
// recomputed from the effective amount values so a partial update of a
// single amount field still yields a correct balance.
type UpdateOrderInput struct {
	OrderNoFromBook       *string              `json:"orderNoFromBook"`
	CustomerName          *string              `json:"customerName"`
	Address               *string              `json:"address"`
	PhoneNumber           *string              `json:"phoneNumber"`
	Category              *string              `json:"category"`
	OrderDate             *time.Time           `json:"orderDate"`
	TrialDate             *time.Time           `json:"trialDate"`
	DeliveryDate          *time.Time           `json:"deliveryDate"`
	TotalAmount           *float64             `json:"totalAmount"`
	AdvanceAmountPaid     *float64             `json:"advanceAmountPaid"`
	BalanceAmountReceived *float64             `json:"balanceAmountReceived"`
	Status                *string              `json:"status"`
	Measurements          *models.Measurements `json:"measurements"`
	Notes                 *string              `json:"notes"`
}

// OrderService owns the order lifecycle rules: validation, order-number
// assignment, balance derivation, status-history bookkeeping, and photo
// attachment/cleanup.
type OrderService struct {
	db     *gorm.DB
	images ImageService
}

// NewOrderService creates an OrderService on the given database handle and
// photo storage backend.
func NewOrderService(db *gorm.DB, images ImageService) *OrderService {
	return &OrderService{db: db, images: images}
}

// Create validates the input, assigns an order number, derives the initial
// balance, and records the first status-history entry attributed to actor.
func (s *OrderService) Create(input CreateOrderInput, actor *models.User) (*models.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.StatusPending
	}

	order := models.Order{
		OrderNo:         s.GenerateOrderNo(time.Now()),
		OrderNoFromBook: strings.TrimSpace(input.OrderNoFromBook),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		Address:         strings.TrimSpace(input.Address),
		PhoneNumber:     strings.TrimSpace(input.PhoneNumber),
		Category:        input.Category,
		OrderDate:       *input.OrderDate,
		TrialDate:       input.TrialDate,
		DeliveryDate:    input.DeliveryDate,
		TotalAmount:     *input.TotalAmount,
		Status:          status,
		Measurements:    input.Measurements,
		Notes:           strings.TrimSpace(input.Notes),
		CreatedByID:     actor.ID,
		CustomerPhotos:  []string{},
	}
	if input.AdvanceAmountPaid != nil {
		order.AdvanceAmountPaid = *input.AdvanceAmountPaid
	}
	if input.BalanceAmountReceived != nil {
		order.BalanceAmountReceived = *input.BalanceAmountReceived
	}

	// Every order starts its audit trail with the creation status.
	order.StatusHistory = []models.StatusHistoryEntry{{
		Status:      status,
		ChangedAt:   time.Now(),
		ChangedByID: actor.ID,
	}}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return s.FindByID(order.ID)
}

// Update merges the present fields of input onto the stored order. A status
// change appends exactly one history entry; the balance is recomputed from
// the effective amount values.
func (s *OrderService) Update(id uint, input UpdateOrderInput, actor *models.User) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		return nil, err
	}

	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status != order.Status {
		entry := models.StatusHistoryEntry{
			OrderID:     order.ID,
			Status:      *input.Status,
			ChangedAt:   time.Now(),
			ChangedByID: actor.ID,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			return nil, fmt.Errorf("failed to record status change: %w", err)
		}
		order.Status = *input.Status
	}

	applyOrderUpdate(&order, input)

	// Save runs the BeforeSave hook, which recomputes the balance from the
	// merged amount fields.
	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	return s.FindByID(order.ID)
}

// applyOrderUpdate copies the present fields of input onto order.
func applyOrderUpdate(order *models.Order, input UpdateOrderInput) {
	if input.OrderNoFromBook != nil {
		order.OrderNoFromBook = strings.TrimSpace(*input.OrderNoFromBook)
	}
	if input.CustomerName != nil {
		order.CustomerName = strings.TrimSpace(*input.CustomerName)
	}
	if input.Address != nil {
		order.Address = strings.TrimSpace(*input.Address)
	}
	if input.PhoneNumber != nil {
		order.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Category != nil {
		order.Category = *input.Category
	}
	if input.OrderDate != nil {
		order.OrderDate = *input.OrderDate
	}
	if input.TrialDate != nil {
		order.TrialDate = input.TrialDate
	}
	if input.DeliveryDate != nil {
		order.DeliveryDate = input.DeliveryDate
	}
	if input.TotalAmount != nil {
		order.TotalAmount = *input.TotalAmount
	}
	if input.AdvanceAmountPaid != nil {
		order.AdvanceAmountPaid = *input.AdvanceAmountPaid
	}
	if input.BalanceAmountReceived != nil {
		order.BalanceAmountReceived = *input.BalanceAmountReceived
	}
	if input.Measurements != nil {
		order.Measurements = *input.Measurements
	}
	if input.Notes != nil {
		order.Notes = strings.TrimSpace(*input.Notes)
	}
}

// Delete removes the order and its status history. Stored photos are
// cleaned up best-effort: a storage failure is logged and never blocks the
// delete, the order record is authoritative.
func (s *OrderService) Delete(id uint) error {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		return err
	}

	for _, ref := range order.CustomerPhotos {
		if err := s.images.DeleteImage(ref); err != nil {
			log.Printf("failed to delete photo %s for order %s: %v", ref, order.OrderNo, err)
		}
	}

	if err := s.db.Where("order_id = ?", order.ID).Delete(&models.StatusHistoryEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete order history: %w", err)
	}

	if err := s.db.Delete(&order).Error; err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return nil
}

// AttachPhotos uploads every file and appends the resulting references to
// the order. The append is all-or-nothing: if any upload fails, files
// stored so far are removed best-effort and no references are appended, so
// the order never references a file that was not stored.
func (s *OrderService) AttachPhotos(id uint, files []*multipart.FileHeader) (*models.Order, error) {
	if len(files) == 0 {
		return nil, NewValidationError("please upload at least one photo")
	}

	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(files))
	for _, file := range files {
		ref, err := s.images.UploadImage(file)
		if err != nil {
			for _, stored := range refs {
				if delErr := s.images.DeleteImage(stored); delErr != nil {
					log.Printf("failed to roll back photo %s: %v", stored, delErr)
				}
			}
			return nil, fmt.Errorf("failed to upload %s: %w", file.Filename, err)
		}
		refs = append(refs, ref)
	}

	order.CustomerPhotos = append(order.CustomerPhotos, refs...)
	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to save photos: %w", err)
	}

	return s.FindByID(order.ID)
}

// RemovePhoto removes the photo at index from the order. The index is
// checked against the array length at call time; out of bounds fails with a
// ValidationError and leaves the array unchanged. The stored file is
// deleted best-effort.
func (s *OrderService) RemovePhoto(id uint, index int) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		return nil, err
	}

	if index < 0 || index >= len(order.CustomerPhotos) {
		return nil, NewValidationError("invalid photo index")
	}

	ref := order.CustomerPhotos[index]
	if err := s.images.DeleteImage(ref); err != nil {
		log.Printf("failed to delete photo %s for order %s: %v", ref, order.OrderNo, err)
	}

	order.CustomerPhotos = append(order.CustomerPhotos[:index], order.CustomerPhotos[index+1:]...)
	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to save photos: %w", err)
	}

	return s.FindByID(order.ID)
}

// FindByID loads an order with its creator and full status history.
func (s *OrderService) FindByID(id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("CreatedBy").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.id ASC")
		}).
		Preload("StatusHistory.ChangedBy").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GenerateOrderNo assigns the next order number for the current year:
// scan the year's existing numbers, take the highest sequence, increment,
// zero-pad to four digits. If the scan fails the create must still succeed,
// so a timestamp-derived number is used instead; occasional non-sequential
// numbers are preferred over a failed order intake.
func (s *OrderService) GenerateOrderNo(now time.Time) string {
	prefix := fmt.Sprintf("%s-%d-", orderNoPrefix, now.Year())

	var latest models.Order
	err := s.db.
		Where("order_no LIKE ?", prefix+"%").
		Order("order_no DESC").
		First(&latest).Error

	next := 1
	switch {
	case err == nil:
		parts := strings.Split(latest.OrderNo, "-")
		seq, parseErr := strconv.Atoi(parts[len(parts)-1])
		if parseErr != nil {
			log.Printf("unparseable order number %q, falling back to timestamp", latest.OrderNo)
			return s.fallbackOrderNo(prefix, now)
		}
		next = seq + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first order of the year
	default:
		log.Printf("failed to scan order numbers: %v", err)
		return s.fallbackOrderNo(prefix, now)
	}

	return fmt.Sprintf("%s%04d", prefix, next)
}

func (s *OrderService) fallbackOrderNo(prefix string, now time.Time) string {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	return prefix + millis[len(millis)-4:]
}

// validateCreateInput checks every required field and reports all
// violations together.
func validateCreateInput(input CreateOrderInput) error {
	var problems []string

	if strings.TrimSpace(input.CustomerName) == "" {
		problems = append(problems, "customerName is required")
	}
	if strings.TrimSpace(input.PhoneNumber) == "" {
		problems = append(problems, "phoneNumber is required")
	}
	if input.Category == "" {
		problems = append(problems, "category is required")
	} else if !models.IsValidCategory(input.Category) {
		problems = append(problems, fmt.Sprintf("category %q is not a valid category", input.Category))
	}
	if input.OrderDate == nil {
		problems = append(problems, "orderDate is required")
	}
	if input.TotalAmount == nil {
		problems = append(problems, "totalAmount is required")
	} else if *input.TotalAmount < 0 {
		problems = append(problems, "totalAmount cannot be negative")
	}
	if input.AdvanceAmountPaid != nil && *input.AdvanceAmountPaid < 0 {
		problems = append(problems, "advanceAmountPaid cannot be negative")
	}
	if input.BalanceAmountReceived != nil && *input.BalanceAmountReceived < 0 {
		problems = append(problems, "balanceAmountReceived cannot be negative")
	}
	if input.Status != "" && !models.IsValidStatus(input.Status) {
		problems = append(problems, fmt.Sprintf("status %q is not a valid status", input.Status))
	}

	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}

func validateUpdateInput(input UpdateOrderInput) error {
	var problems []string

	if input.CustomerName != nil && strings.TrimSpace(*input.CustomerName) == "" {
		problems = append(problems, "customerName cannot be empty")
	}
	if input.PhoneNumber != nil && strings.TrimSpace(*input.PhoneNumber) == "" {
		problems = append(problems, "phoneNumber cannot be empty")
	}
	if input.Category != nil && !models.IsValidCategory(*input.Category) {
		problems = append(problems, fmt.Sprintf("category %q is not a valid category", *input.Category))
	}
	if input.TotalAmount != nil && *input.TotalAmount < 0 {
		problems = append(problems, "totalAmount cannot be negative")
	}
	if input.AdvanceAmountPaid != nil && *input.AdvanceAmountPaid < 0 {
		problems = append(problems, "advanceAmountPaid cannot be negative")
	}
	if input.BalanceAmountReceived != nil && *input.BalanceAmountReceived < 0 {
		problems = append(problems, "balanceAmountReceived cannot be negative")
	}
	if input.Status != nil && !models.IsValidStatus(*input.Status) {
		problems = append(problems, fmt.Sprintf("status %q is not a valid status", *input.Status))
	}

	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}
