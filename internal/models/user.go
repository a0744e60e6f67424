package models

// User represents a user account in the users collection.
// Every field is always present in the stored document.
type User struct {
	ID                  int64  `bson:"id" json:"id"`
	Name                string `bson:"name" json:"name"`
	Email               string `bson:"email" json:"email"`
	Phone               string `bson:"phone" json:"phone"`
	IsActive            bool   `bson:"isActive" json:"isActive"`
	HasUsedReferralCode bool   `bson:"hasUsedReferralCode" json:"hasUsedReferralCode"`
	ReferralCode        string `bson:"referralCode" json:"referralCode"`
	ReferredBy          uint32 `bson:"referredBy" json:"referredBy"`
}

// CreateUserPayload is the request body of POST /user.
//
// The referral flag is spelled hasUsedReferrelCode on the wire and stored as
// hasUsedReferralCode; existing clients depend on the wire spelling.
type CreateUserPayload struct {
	Name                string  `json:"name" binding:"required"`
	Phone               *string `json:"phone"`
	Email               *string `json:"email"`
	HasUsedReferralCode *bool   `json:"hasUsedReferrelCode"`
	ReferralCode        *string `json:"referralCode"`
	ReferredBy          *uint32 `json:"referredBy"`
}

// WithDefaults builds a fully populated, active User with the given id.
// Omitted optional fields take their zero values.
func (p *CreateUserPayload) WithDefaults(id int64) *User {
	user := &User{
		ID:       id,
		Name:     p.Name,
		IsActive: true,
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
	if p.Phone != nil {
		user.Phone = *p.Phone
	}
	if p.HasUsedReferralCode != nil {
		user.HasUsedReferralCode = *p.HasUsedReferralCode
	}
	if p.ReferralCode != nil {
		user.ReferralCode = *p.ReferralCode
	}
	if p.ReferredBy != nil {
		user.ReferredBy = *p.ReferredBy
	}
	return user
}
