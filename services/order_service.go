package services

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kunal-qd/fabric-orders-api/config"
	"github.com/kunal-qd/fabric-orders-api/models"
)

// ErrOrderNotFound is returned when an order id does not resolve.
var ErrOrderNotFound = errors.New("order not found")

// OrderInput carries one order-form submission: the customer profile
// fields alongside the order fields. The form always submits both; the
// service reconciles the customer (find-or-create by phone) before
// touching the order.
type OrderInput struct {
	Name     string
	Phone    string
	Address  string
	Showroom string
	Status   string
	DueDate  string
	Entries  []models.Entry
}

// FindOrCreateCustomer upserts a customer by phone number. The phone is
// the de-duplication key: an existing record gets its profile fields
// overwritten (last write wins), a new phone gets a fresh record. The
// unique index on phone makes concurrent first submissions collapse
// into a single row instead of racing into duplicates.
func FindOrCreateCustomer(name, phone, address, showroom string) (models.Customer, error) {
	db := config.GetDB()

	customer := models.Customer{
		Name:     name,
		Phone:    phone,
		Address:  address,
		Showroom: showroom,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "showroom", "updated_at"}),
	}).Create(&customer).Error
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to upsert customer: %w", err)
	}

	// Re-read by phone: on conflict the insert does not report the
	// surviving row's id.
	if err := db.Where("phone = ?", phone).First(&customer).Error; err != nil {
		return models.Customer{}, fmt.Errorf("failed to load customer: %w", err)
	}

	return customer, nil
}

// CreateOrder reconciles the customer and persists a new order.
//
// Entries are stored as submitted, with one exception: an entry whose
// index has newly uploaded files gets its Images replaced by fresh blob
// references, one per file in upload order. Entries without uploads keep
// whatever Images value the payload carried. Every stored entry ends up
// with a non-nil Images slice.
func CreateOrder(input OrderInput, uploads map[int][]*multipart.FileHeader) (string, error) {
	db := config.GetDB()
	store := GetBlobStore()

	customer, err := FindOrCreateCustomer(input.Name, input.Phone, input.Address, input.Showroom)
	if err != nil {
		return "", err
	}

	status := input.Status
	if status == "" {
		status = models.StatusPending
	}

	entries := make([]models.Entry, len(input.Entries))
	copy(entries, input.Entries)
	for i := range entries {
		files := uploads[i]
		if len(files) > 0 {
			refs, err := storeUploads(store, files)
			if err != nil {
				return "", err
			}
			entries[i].Images = refs
		}
	}
	models.NormalizeEntries(entries)

	order := models.Order{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		Status:     status,
		DueDate:    input.DueDate,
		Entries:    entries,
	}
	if err := db.Create(&order).Error; err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	return order.ID, nil
}

// UpdateOrder applies an edited submission to an existing order.
//
// In order: resolve the order (ErrOrderNotFound if absent); purge every
// blob listed in deletedImages from the store, best-effort; overwrite
// the customer's profile fields; rebuild each entry's Images from the
// client-echoed set plus newly uploaded files for its window_id; then
// fully replace the order's entries, status, and due date. References
// the client did not echo back are dropped from the entry, but blobs
// are only deleted when named in deletedImages.
func UpdateOrder(orderID string, input OrderInput, deletedImages map[string][]string, uploads map[string][]*multipart.FileHeader) error {
	db := config.GetDB()
	store := GetBlobStore()

	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to load order: %w", err)
	}

	for windowID, blobIDs := range deletedImages {
		if n := purgeBlobs(store, blobIDs); n > 0 {
			log.Printf("order %s: %d of %d image purge(s) failed for window %s", orderID, n, len(blobIDs), windowID)
		}
	}

	profile := map[string]interface{}{
		"name":     input.Name,
		"phone":    input.Phone,
		"address":  input.Address,
		"showroom": input.Showroom,
	}
	if err := db.Model(&models.Customer{}).Where("id = ?", order.CustomerID).Updates(profile).Error; err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	entries := make([]models.Entry, len(input.Entries))
	copy(entries, input.Entries)
	for i := range entries {
		files := uploads[entries[i].WindowID]
		if len(files) > 0 {
			refs, err := storeUploads(store, files)
			if err != nil {
				return err
			}
			entries[i].Images = append(entries[i].Images, refs...)
		}
	}
	models.NormalizeEntries(entries)

	order.Entries = entries
	order.Status = input.Status
	order.DueDate = input.DueDate
	if err := db.Save(&order).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	GetRenderCache().Invalidate(orderID)
	return nil
}

// DeleteOrder removes an order and cascades deletion of every blob its
// entries reference. Blob deletion is best-effort: a blob that fails to
// delete is logged and leaked, never fatal. The customer stays.
func DeleteOrder(orderID string) error {
	db := config.GetDB()
	store := GetBlobStore()

	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to load order: %w", err)
	}

	var keys []string
	for _, entry := range order.Entries {
		for _, ref := range entry.Images {
			if key, ok := models.ParseImageRef(ref); ok {
				keys = append(keys, key)
			}
		}
	}
	if n := purgeBlobs(store, keys); n > 0 {
		log.Printf("order %s: %d of %d cascade blob deletion(s) failed", orderID, n, len(keys))
	}

	if err := db.Delete(&models.Order{}, "id = ?", orderID).Error; err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	GetRenderCache().Invalidate(orderID)
	return nil
}

// GetOrder loads an order together with its resolved customer.
func GetOrder(orderID string) (models.Order, models.Customer, error) {
	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Customer").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, models.Customer{}, ErrOrderNotFound
		}
		return models.Order{}, models.Customer{}, fmt.Errorf("failed to load order: %w", err)
	}

	entries := []models.Entry(order.Entries)
	models.NormalizeEntries(entries)
	order.Entries = entries

	return order, order.Customer, nil
}

// storeUploads stores each file and returns tagged blob references in
// upload order.
func storeUploads(store BlobStore, files []*multipart.FileHeader) ([]string, error) {
	refs := make([]string, 0, len(files))
	for _, fh := range files {
		key, err := store.Upload(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to store upload %q: %w", fh.Filename, err)
		}
		refs = append(refs, models.NewImageRef(key))
	}
	return refs, nil
}

// purgeBlobs deletes the given blob ids, logging each failure and
// returning the failure count. A missing blob is not an error.
func purgeBlobs(store BlobStore, blobIDs []string) int {
	failed := 0
	for _, id := range blobIDs {
		key, _ := models.ParseImageRef(id)
		if err := store.Delete(key); err != nil {
			log.Printf("warning: failed to delete blob %s: %v", key, err)
			failed++
		}
	}
	return failed
}
