package core

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type (
	// Date is a calendar date at day precision. Both expenses and income use
	// this single representation; the original data set stored income dates
	// as full datetimes, which is normalized away at the store boundary.
	Date struct {
		time.Time
	}

	Expense struct {
		ID       int64   `json:"id"`
		User     string  `json:"user,omitempty"`
		Amount   float64 `json:"amount"`
		Category string  `json:"category"`
		Note     string  `json:"note"`
		Date     Date    `json:"date"`
		GroupID  string  `json:"group_id,omitempty"`
	}

	Income struct {
		ID     int64   `json:"id"`
		Amount float64 `json:"amount"`
		Source string  `json:"source"`
		Note   string  `json:"note"`
		Date   Date    `json:"date"`
	}

	Budget struct {
		User   string  `json:"-"`
		Month  string  `json:"month"`
		Amount float64 `json:"amount"`
	}

	Group struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Budget    float64   `json:"budget"`
		CreatedBy string    `json:"created_by"`
		Members   []string  `json:"members"`
		CreatedAt time.Time `json:"created_at"`
	}

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MonthKey returns the YYYY-MM grouping key. A zero date degrades to the
// current month rather than failing, matching the ledger's historical
// behavior for records with unusable dates.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return time.Now().UTC().Format(monthLayout)
	}
	return d.Format(monthLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidMonth reports whether s is a YYYY-MM month key.
func ValidMonth(s string) bool {
	_, err := time.Parse(monthLayout, s)
	return err == nil
}

// CurrentMonth returns the current UTC month key.
func CurrentMonth() string {
	return time.Now().UTC().Format(monthLayout)
}
