package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Product is the public shape of a catalog record
type Product struct {
	ID        string `json:"id"`
	Brand     string `json:"brand"`
	Category  string `json:"category"`
	Detail    string `json:"detail"`
	Discount  int    `json:"discount"`
	Image     string `json:"image"`
	Link      string `json:"link"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	SellPrice int    `json:"sellprice"`
	SKU       string `json:"sku"`
	Views     int    `json:"views"`
	Warranty  string `json:"warranty"`
}

// RawProduct is a catalog document as the store returns it. The store copies
// the document key into "id".
type RawProduct map[string]interface{}

// ID returns the record identifier, or "" when absent
func (r RawProduct) ID() string {
	return r.String("id")
}

// String reads a text field leniently; missing or non-string values read as "".
func (r RawProduct) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int reads a numeric field leniently; anything unparseable reads as 0.
func (r RawProduct) Int(key string) int {
	n, err := toInt(r[key])
	if err != nil {
		return 0
	}
	return n
}

// EffectivePrice is the sale price, or the list price when no sale price is set
func (r RawProduct) EffectivePrice() int {
	if p := r.Int("sellprice"); p > 0 {
		return p
	}
	return r.Int("price")
}

// HasDiscount reports whether the record carries a usable discount value.
func (r RawProduct) HasDiscount() bool {
	v, ok := r["discount"]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" || s == "-" || s == "ไม่มี" {
			return false
		}
	}
	n, err := toInt(v)
	if err != nil {
		return true
	}
	return n > 0
}

// requiredTextFields and requiredIntFields must all be present for a record to be
// shown to shoppers.
var (
	requiredTextFields = []string{"id", "brand", "category", "detail", "image", "link", "name", "sku", "warranty"}
	requiredIntFields  = []string{"discount", "price", "sellprice", "views"}
)

// CoerceProduct validates a raw record and converts it into a Product.
// Any missing or mistyped required field yields ErrInvalidProduct.
func CoerceProduct(raw RawProduct) (Product, error) {
	text := make(map[string]string, len(requiredTextFields))
	for _, key := range requiredTextFields {
		v, ok := raw[key]
		if !ok || v == nil {
			return Product{}, fmt.Errorf("%w: missing field %q", ErrInvalidProduct, key)
		}
		s, ok := v.(string)
		if !ok {
			return Product{}, fmt.Errorf("%w: field %q is %T, want string", ErrInvalidProduct, key, v)
		}
		text[key] = s
	}

	nums := make(map[string]int, len(requiredIntFields))
	for _, key := range requiredIntFields {
		v, ok := raw[key]
		if !ok || v == nil {
			return Product{}, fmt.Errorf("%w: missing field %q", ErrInvalidProduct, key)
		}
		n, err := toInt(v)
		if err != nil {
			return Product{}, fmt.Errorf("%w: field %q: %v", ErrInvalidProduct, key, err)
		}
		nums[key] = n
	}

	return Product{
		ID:        text["id"],
		Brand:     text["brand"],
		Category:  text["category"],
		Detail:    text["detail"],
		Discount:  nums["discount"],
		Image:     text["image"],
		Link:      text["link"],
		Name:      text["name"],
		Price:     nums["price"],
		SellPrice: nums["sellprice"],
		SKU:       text["sku"],
		Views:     nums["views"],
		Warranty:  text["warranty"],
	}, nil
}

// AsInt converts a loosely typed JSON or BSON number. ok is false when v is
// not an integer.
func AsInt(v interface{}) (n int, ok bool) {
	n, err := toInt(v)
	return n, err == nil
}

// toInt converts the numeric encodings seen in catalog documents. Floats must be
// integral; strings may carry thousands separators.
func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	return int(f), nil
}
