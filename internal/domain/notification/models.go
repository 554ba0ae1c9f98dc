package notification

import (
	"time"

	"financeiro/internal/shared/apperror"
)

// Notification categories
const (
	CategoryAccounts     = "accounts"
	CategoryGeneral      = "general"
	CategoryInvoices     = "invoices"
	CategoryTransactions = "transactions"
)

var validCategories = map[string]struct{}{
	CategoryAccounts:     {},
	CategoryGeneral:      {},
	CategoryInvoices:     {},
	CategoryTransactions: {},
}

var validDeviceTypes = map[string]struct{}{
	"ios":     {},
	"android": {},
	"web":     {},
}

// Domain errors
var (
	ErrDeviceTokenNotFound  = apperror.NotFound("device token not found")
	ErrNotificationNotFound = apperror.NotFound("notification not found")
	ErrPreferencesNotFound  = apperror.NotFound("notification preferences not found")
	ErrInvalidCategory      = apperror.Validation("invalid notification category")
	ErrInvalidDeviceType    = apperror.Validation("device type must be 'ios', 'android' or 'web'")
	ErrInvalidToken         = apperror.Validation("device token is required")
	ErrInvalidUserID        = apperror.Validation("valid user ID is required")
)

// DeviceToken represents a registered FCM device token
type DeviceToken struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	Token      string    `json:"token"`
	DeviceType string    `json:"deviceType"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsed   time.Time `json:"lastUsed"`
}

// Preference stores per-category notification toggles for a user
type Preference struct {
	UserID              int64     `json:"-"`
	InvoicesEnabled     bool      `json:"invoices_enabled"`
	TransactionsEnabled bool      `json:"transactions_enabled"`
	AccountsEnabled     bool      `json:"accounts_enabled"`
	GeneralEnabled      bool      `json:"general_enabled"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DefaultPreference has every category enabled
func DefaultPreference(userID int64) *Preference {
	return &Preference{
		UserID:              userID,
		InvoicesEnabled:     true,
		TransactionsEnabled: true,
		AccountsEnabled:     true,
		GeneralEnabled:      true,
	}
}

// Notification represents a stored notification record
type Notification struct {
	ID        string            `json:"id"`
	UserID    int64             `json:"-"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Category  string            `json:"category"`
	Data      map[string]string `json:"data"`
	OpenedAt  *time.Time        `json:"opened_at"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateDeviceTokenParams contains parameters for registering a device
type CreateDeviceTokenParams struct {
	UserID     int64
	Token      string
	DeviceType string
}

func (p CreateDeviceTokenParams) Validate() error {
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	if p.Token == "" {
		return ErrInvalidToken
	}
	if !IsValidDeviceType(p.DeviceType) {
		return ErrInvalidDeviceType
	}
	return nil
}

// UpdatePreferenceParams contains fields for updating notification preferences
type UpdatePreferenceParams struct {
	InvoicesEnabled     *bool
	TransactionsEnabled *bool
	AccountsEnabled     *bool
	GeneralEnabled      *bool
}

// Apply returns a copy of p with the update applied
func (u UpdatePreferenceParams) Apply(p *Preference) *Preference {
	next := *p
	if u.InvoicesEnabled != nil {
		next.InvoicesEnabled = *u.InvoicesEnabled
	}
	if u.TransactionsEnabled != nil {
		next.TransactionsEnabled = *u.TransactionsEnabled
	}
	if u.AccountsEnabled != nil {
		next.AccountsEnabled = *u.AccountsEnabled
	}
	if u.GeneralEnabled != nil {
		next.GeneralEnabled = *u.GeneralEnabled
	}
	return &next
}

func IsValidCategory(c string) bool {
	_, ok := validCategories[c]
	return ok
}

func IsValidDeviceType(dt string) bool {
	_, ok := validDeviceTypes[dt]
	return ok
}

// IsCategoryEnabled checks if a specific category is enabled in preferences
func (p *Preference) IsCategoryEnabled(category string) bool {
	switch category {
	case CategoryAccounts:
		return p.AccountsEnabled
	case CategoryGeneral:
		return p.GeneralEnabled
	case CategoryInvoices:
		return p.InvoicesEnabled
	case CategoryTransactions:
		return p.TransactionsEnabled
	default:
		return false
	}
}
