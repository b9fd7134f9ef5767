package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ShopAssist/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type loader struct {
	db           *gorm.DB
	dir          string
	batch        int
	passwordHash string
}

func (l *loader) setDefaultPassword(password string) error {
	var u models.User
	if err := u.SetPassword(password); err != nil {
		return err
	}
	l.passwordHash = u.PasswordHash
	return nil
}

// run loads every known file, parents before children. Missing files are
// skipped; rows whose primary key already exists are left untouched, except
// that a default password is still applied to users that have none. The
// total counts inserted rows only.
func (l *loader) run() (int, error) {
	steps := []struct {
		file string
		load func(path string) (int, error)
	}{
		{"distribution_centers.csv", func(p string) (int, error) { return loadFile(l, p, parseDistributionCenter) }},
		{"products.csv", func(p string) (int, error) { return loadFile(l, p, parseProduct) }},
		{"inventory_items.csv", func(p string) (int, error) { return loadFile(l, p, parseInventoryItem) }},
		{"users.csv", func(p string) (int, error) { return loadFile(l, p, l.parseUser) }},
		{"orders.csv", func(p string) (int, error) { return loadFile(l, p, parseOrder) }},
		{"order_items.csv", func(p string) (int, error) { return loadFile(l, p, parseOrderItem) }},
	}

	total := 0
	for _, s := range steps {
		path := filepath.Join(l.dir, s.file)
		n, err := s.load(path)
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("[loaddata] %s not found, skipping", path)
			continue
		}
		if err != nil {
			return total, fmt.Errorf("%s: %w", s.file, err)
		}
		log.Printf("[loaddata] %s: %d rows", s.file, n)
		total += n
	}
	if err := l.backfillPasswords(); err != nil {
		return total, fmt.Errorf("users: %w", err)
	}
	return total, nil
}

// backfillPasswords sets the default password hash on users loaded by an
// earlier run without one. Users that already have a password keep it.
func (l *loader) backfillPasswords() error {
	if l.passwordHash == "" {
		return nil
	}
	res := l.db.Model(&models.User{}).
		Where("password_hash = ? OR password_hash IS NULL", "").
		Update("password_hash", l.passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[loaddata] default password set for %d existing users", res.RowsAffected)
	}
	return nil
}

func loadFile[T any](l *loader, path string, parse func(row) (T, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	items, err := readRows(f, parse)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	batch := l.batch
	if batch <= 0 {
		batch = 500
	}
	res := l.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(items, batch)
	if res.Error != nil {
		return 0, res.Error
	}
	// rows skipped by ON CONFLICT are not counted
	return int(res.RowsAffected), nil
}

// readRows parses a CSV with a header line into values, one per record.
func readRows[T any](r io.Reader, parse func(row) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	var out []T
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := parse(row{cols: cols, rec: rec})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, v)
	}
}

// row reads one CSV record by column name. Absent columns read as empty.
type row struct {
	cols map[string]int
	rec  []string
}

func (r row) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r row) id(name string) (uint, error) {
	s := r.str(name)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%s: invalid id %q", name, s)
	}
	return uint(v), nil
}

func (r row) optID(name string) *uint {
	s := r.str(name)
	if s == "" {
		return nil
	}
	// nullable integer columns are sometimes exported as floats, e.g. "12.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return nil
	}
	v := uint(f)
	return &v
}

func (r row) integer(name string) int {
	f, _ := strconv.ParseFloat(r.str(name), 64)
	return int(f)
}

func (r row) float(name string) float64 {
	f, _ := strconv.ParseFloat(r.str(name), 64)
	return f
}

var timeLayouts = []string{
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// timestamp parses the timestamp formats found in the exports. Empty or
// unparseable values are nil, matching how the exports mark missing dates.
func (r row) timestamp(name string) *time.Time {
	s := r.str(name)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseDistributionCenter(r row) (models.DistributionCenter, error) {
	id, err := r.id("id")
	if err != nil {
		return models.DistributionCenter{}, err
	}
	return models.DistributionCenter{
		ID:        id,
		Name:      r.str("name"),
		Latitude:  r.float("latitude"),
		Longitude: r.float("longitude"),
	}, nil
}

func parseProduct(r row) (models.Product, error) {
	id, err := r.id("id")
	if err != nil {
		return models.Product{}, err
	}
	return models.Product{
		ID:                   id,
		Cost:                 r.float("cost"),
		Category:             r.str("category"),
		Name:                 r.str("name"),
		Brand:                r.str("brand"),
		RetailPrice:          r.float("retail_price"),
		Department:           r.str("department"),
		SKU:                  r.str("sku"),
		DistributionCenterID: r.optID("distribution_center_id"),
	}, nil
}

func parseInventoryItem(r row) (models.InventoryItem, error) {
	id, err := r.id("id")
	if err != nil {
		return models.InventoryItem{}, err
	}
	return models.InventoryItem{
		ID:                          id,
		ProductID:                   r.optID("product_id"),
		CreatedAt:                   r.timestamp("created_at"),
		SoldAt:                      r.timestamp("sold_at"),
		Cost:                        r.float("cost"),
		ProductCategory:             r.str("product_category"),
		ProductName:                 r.str("product_name"),
		ProductBrand:                r.str("product_brand"),
		ProductRetailPrice:          r.float("product_retail_price"),
		ProductDepartment:           r.str("product_department"),
		ProductSKU:                  r.str("product_sku"),
		ProductDistributionCenterID: r.optID("product_distribution_center_id"),
	}, nil
}

func (l *loader) parseUser(r row) (models.User, error) {
	id, err := r.id("id")
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:            id,
		FirstName:     r.str("first_name"),
		LastName:      r.str("last_name"),
		Email:         strings.ToLower(r.str("email")),
		Age:           r.integer("age"),
		Gender:        r.str("gender"),
		State:         r.str("state"),
		StreetAddress: r.str("street_address"),
		PostalCode:    r.str("postal_code"),
		City:          r.str("city"),
		Country:       r.str("country"),
		Latitude:      r.float("latitude"),
		Longitude:     r.float("longitude"),
		TrafficSource: r.str("traffic_source"),
		PasswordHash:  l.passwordHash,
	}
	if t := r.timestamp("created_at"); t != nil {
		u.CreatedAt = *t
	}
	return u, nil
}

func parseOrder(r row) (models.Order, error) {
	id, err := r.id("order_id")
	if err != nil {
		return models.Order{}, err
	}
	return models.Order{
		OrderID:     id,
		UserID:      r.optID("user_id"),
		Status:      r.str("status"),
		Gender:      r.str("gender"),
		CreatedAt:   r.timestamp("created_at"),
		ReturnedAt:  r.timestamp("returned_at"),
		ShippedAt:   r.timestamp("shipped_at"),
		DeliveredAt: r.timestamp("delivered_at"),
		NumOfItem:   r.integer("num_of_item"),
	}, nil
}

func parseOrderItem(r row) (models.OrderItem, error) {
	id, err := r.id("id")
	if err != nil {
		return models.OrderItem{}, err
	}
	return models.OrderItem{
		ID:              id,
		OrderID:         r.optID("order_id"),
		UserID:          r.optID("user_id"),
		ProductID:       r.optID("product_id"),
		InventoryItemID: r.optID("inventory_item_id"),
		Status:          r.str("status"),
		CreatedAt:       r.timestamp("created_at"),
		ShippedAt:       r.timestamp("shipped_at"),
		DeliveredAt:     r.timestamp("delivered_at"),
		ReturnedAt:      r.timestamp("returned_at"),
	}, nil
}
