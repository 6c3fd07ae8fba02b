package models

import "time"

// ClothingSize groups the sizes a Santa needs to buy clothes.
type ClothingSize struct {
	Shirt string `json:"shirt,omitempty"`
	Pants string `json:"pants,omitempty"`
	Shoes string `json:"shoes,omitempty"`
}

// User is a registered participant. The identity fields come from the
// identity provider; the gift-logistics fields are filled in incrementally
// from the profile screen.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"` // stored lower-cased
	Avatar  string `json:"avatar"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`

	ClothingSize    *ClothingSize `json:"clothing_size,omitempty"`
	GiftPreferences string        `json:"gift_preferences,omitempty"`
	Dislikes        string        `json:"dislikes,omitempty"`
	CustomMessage   string        `json:"custom_message,omitempty"`

	IsBot bool `json:"is_bot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate is the typed patch for profile edits. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Name            *string       `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Avatar          *string       `json:"avatar,omitempty"`
	Phone           *string       `json:"phone,omitempty" binding:"omitempty,max=30"`
	Address         *string       `json:"address,omitempty" binding:"omitempty,max=500"`
	ClothingSize    *ClothingSize `json:"clothing_size,omitempty"`
	GiftPreferences *string       `json:"gift_preferences,omitempty" binding:"omitempty,max=1000"`
	Dislikes        *string       `json:"dislikes,omitempty" binding:"omitempty,max=1000"`
	CustomMessage   *string       `json:"custom_message,omitempty" binding:"omitempty,max=1000"`
}
