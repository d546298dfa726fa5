package profile

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

// ContextKey is where the guard stores the caller's *Profile.
const ContextKey = "profile"

// Profile is the application record for an authenticated user. Its ID equals the auth user id.
type Profile struct {
	ID                 uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string                   `gorm:"type:varchar(320);not null;default:'';index" json:"email"`
	FullName           *string                  `gorm:"type:varchar(200);column:full_name" json:"full_name,omitempty"`
	IsAdmin            bool                     `gorm:"not null;default:false;column:is_admin" json:"is_admin"`
	SubscriptionStatus types.SubscriptionStatus `gorm:"type:varchar(32);not null;default:'';column:subscription_status" json:"subscription_status"`
	PlanType           *types.PlanType          `gorm:"type:varchar(32);column:plan_type" json:"plan_type,omitempty"`
	StripeCustomerID   *string                  `gorm:"type:varchar(255);column:stripe_customer_id;index" json:"stripe_customer_id,omitempty"`

	types.TimestampModel
}

// TableName overrides the default table name.
func (Profile) TableName() string { return "profiles" }

// HasActiveMembership reports whether the profile holds a paying subscription.
func (p Profile) HasActiveMembership() bool {
	return p.SubscriptionStatus.Grants()
}

// FromContext returns the profile attached by the guard, if any.
func FromContext(c *gin.Context) (*Profile, bool) {
	value, exists := c.Get(ContextKey)
	if !exists {
		return nil, false
	}
	p, ok := value.(*Profile)
	return p, ok && p != nil
}

// Get retrieves a profile by user id.
func Get(db *gorm.DB, id uuid.UUID) (Profile, error) {
	var p Profile
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, ErrProfileNotFound
		}
		return p, err
	}
	return p, nil
}

// CreateInput carries the fields known when a profile is created lazily.
type CreateInput struct {
	ID       uuid.UUID
	Email    string
	FullName *string
	IsAdmin  bool
}

// CreateIfMissing inserts a profile unless one already exists for the id, then
// returns the stored row. Concurrent first requests for one user converge on one row.
func CreateIfMissing(db *gorm.DB, input CreateInput) (Profile, error) {
	p := Profile{
		ID:       input.ID,
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		FullName: types.TrimmedPtr(input.FullName),
		IsAdmin:  input.IsAdmin,
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
		return Profile{}, err
	}

	return Get(db, input.ID)
}

// SetAdminByEmail flips is_admin for every profile with the given email and
// returns the number of rows changed.
func SetAdminByEmail(db *gorm.DB, email string, admin bool) (int64, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return 0, ErrEmailRequired
	}

	result := db.Model(&Profile{}).
		Where("LOWER(email) = ? AND is_admin <> ?", normalized, admin).
		Update("is_admin", admin)
	return result.RowsAffected, result.Error
}

// MembershipUpdate carries subscription state reported by the payment provider.
type MembershipUpdate struct {
	UserID           uuid.UUID
	StripeCustomerID string
	Status           types.SubscriptionStatus
	PlanType         *types.PlanType
}

// ApplyMembership stores subscription state on a profile. When UserID is nil the
// profile is located by its Stripe customer id.
func ApplyMembership(db *gorm.DB, update MembershipUpdate) (Profile, error) {
	var p Profile
	var err error

	switch {
	case update.UserID != uuid.Nil:
		p, err = Get(db, update.UserID)
	case update.StripeCustomerID != "":
		err = db.First(&p, "stripe_customer_id = ?", update.StripeCustomerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrProfileNotFound
		}
	default:
		err = ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	updates := map[string]interface{}{
		"subscription_status": update.Status,
	}
	if update.PlanType != nil {
		updates["plan_type"] = *update.PlanType
	}
	if update.StripeCustomerID != "" {
		updates["stripe_customer_id"] = update.StripeCustomerID
	}

	if err := db.Model(&p).Updates(updates).Error; err != nil {
		return Profile{}, err
	}

	return Get(db, p.ID)
}
