package listing

import (
	"fmt"
	"net/url"
	"reflect"
	"time"
)

// Default pagination applied to zero Page fields.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// DateLayout is the format of export range bounds.
const DateLayout = "2006-01-02"

// Page selects one page of a listing.
type Page struct {
	Page  int
	Limit int
}

func (p Page) query() string {
	page, limit := p.Page, p.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return fmt.Sprintf("page=%d&limit=%d", page, limit)
}

// DateRange bounds an export. A zero bound is sent as the literal "null",
// which the API reads as open-ended.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (d DateRange) query() string {
	return "startDate=" + formatDate(d.Start) + "&endDate=" + formatDate(d.End)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "null"
	}
	return t.Format(DateLayout)
}

// Filter holds property search criteria. Slice values are sent as repeated
// key[] parameters, nil values are skipped and everything else is sent once.
//
//	listing.Filter{"city": "Pune", "bhk": []int{2, 3}, "furnished": nil}
//	// bhk[]=2&bhk[]=3&city=Pune
type Filter map[string]any

// Values encodes the filter into query parameters.
func (f Filter) Values() url.Values {
	values := make(url.Values, len(f))
	for key, value := range f {
		if value == nil {
			continue
		}
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Pointer:
			if rv.IsNil() {
				continue
			}
			values.Add(key, fmt.Sprint(rv.Elem().Interface()))
		case reflect.Slice, reflect.Array:
			if rv.Kind() == reflect.Slice && rv.IsNil() {
				continue
			}
			for i := range rv.Len() {
				values.Add(key+"[]", fmt.Sprint(rv.Index(i).Interface()))
			}
		default:
			values.Add(key, fmt.Sprint(value))
		}
	}
	return values
}

// Enquiry is a lead submitted from the website or a property page.
type Enquiry struct {
	Name     string `json:"name"`
	MobileNo string `json:"mobileNo"`
	Email    string `json:"email"`
	UID      string `json:"uid,omitempty"` // owner of the enquired property
}

// Visit is an enquiry with a requested site visit date.
type Visit struct {
	Enquiry
	VisitAt time.Time `json:"visitAt"`
}
