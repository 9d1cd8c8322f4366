// Package seqid allocates the human-readable sequence identifiers used
// across the back office: invoice numbers, order numbers, bill numbers and
// shop codes. Allocation goes through a per-scope counter row incremented
// under a row lock, so two concurrent creations can never read the same
// last value. Counters missing their row (legacy data) are seeded from the
// highest existing identifier for the scope before first use.
package seqid

import (
	"fmt"
	"strconv"
	"time"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mercato-system/internal/database/models"
)

// NextInvoiceNumber returns the next INV-{year}-{seq3} identifier. Must be
// called inside the same transaction that persists the invoice.
func NextInvoiceNumber(tx *gorm.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("INV-%d", year)
	seq, err := next(tx, fmt.Sprintf("invoice:%d", year), func() (int64, error) {
		return lastSequence(tx, &models.Invoice{}, "invoice_number", prefix)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%03d", prefix, seq), nil
}

// NextOrderNumber returns the next ORD-{year}-{seq3} identifier.
func NextOrderNumber(tx *gorm.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("ORD-%d", year)
	seq, err := next(tx, fmt.Sprintf("order:%d", year), func() (int64, error) {
		return lastSequence(tx, &models.Order{}, "order_number", prefix)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%03d", prefix, seq), nil
}

// NextShopBillNumber returns the next SHP-{shopCode}-{seq4} identifier.
func NextShopBillNumber(tx *gorm.DB, shopCode string) (string, error) {
	prefix := fmt.Sprintf("SHP-%s", shopCode)
	seq, err := next(tx, fmt.Sprintf("bill:shop:%s", shopCode), func() (int64, error) {
		return lastSequence(tx, &models.Bill{}, "bill_number", prefix)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, seq), nil
}

// NextAdminBillNumber returns the next ADM-{seq4} identifier.
func NextAdminBillNumber(tx *gorm.DB) (string, error) {
	seq, err := next(tx, "bill:admin", func() (int64, error) {
		return lastSequence(tx, &models.Bill{}, "bill_number", "ADM-")
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ADM-%04d", seq), nil
}

// NextShopCode allocates a shop code like KA01 from the shop's name. The
// two-letter prefix is derived from the name; the numeric suffix is
// sequenced per prefix.
func NextShopCode(tx *gorm.DB, shopName string) (string, error) {
	prefix := CodePrefix(shopName)
	seq, err := next(tx, fmt.Sprintf("shopcode:%s", prefix), func() (int64, error) {
		return lastSequence(tx, &models.Shop{}, "shop_code", prefix)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%02d", prefix, seq), nil
}

func next(tx *gorm.DB, scope string, seed func() (int64, error)) (int64, error) {
	var ctr models.SequenceCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scope = ?", scope).First(&ctr).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		last, serr := seed()
		if serr != nil {
			return 0, serr
		}
		ctr = models.SequenceCounter{Scope: scope, LastValue: last}
		if cerr := tx.Create(&ctr).Error; cerr != nil {
			return 0, cerr
		}
	case err != nil:
		return 0, err
	}

	ctr.LastValue++
	if err := tx.Save(&ctr).Error; err != nil {
		return 0, err
	}
	return ctr.LastValue, nil
}

// lastSequence scans the most recently created record whose identifier
// matches the prefix and parses its trailing sequence. No match, or a
// malformed identifier, seeds the counter at 0.
func lastSequence(tx *gorm.DB, model interface{}, column, prefix string) (int64, error) {
	var ids []string
	err := tx.Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Order("created_at DESC").
		Limit(1).
		Pluck(column, &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return TrailingSequence(ids[0]), nil
}

// TrailingSequence parses the numeric suffix of an identifier:
// INV-2025-007 -> 7, KA01 -> 1. Unparseable suffixes count as 0 rather
// than poisoning the next allocation.
func TrailingSequence(id string) int64 {
	i := len(id)
	for i > 0 && unicode.IsDigit(rune(id[i-1])) {
		i--
	}
	if i == len(id) {
		return 0
	}
	n, err := strconv.ParseInt(id[i:], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// CodePrefix derives the two-letter shop code prefix from a shop name.
// Non-letters are skipped; names with fewer than two letters fall back to XX.
func CodePrefix(name string) string {
	var letters []rune
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 2 {
				break
			}
		}
	}
	if len(letters) < 2 {
		return "XX"
	}
	return string(letters)
}
