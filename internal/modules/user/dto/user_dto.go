package dto

// LoginRequest is the credentials body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	FullName string  `json:"full_name" binding:"required,min=1,max=100"`
	Stance   *string `json:"stance" binding:"omitempty,oneof=regular goofy"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
}

type FavoriteToggleResponse struct {
	Favorited bool `json:"favorited"`
}

type HideFeedItemRequest struct {
	ItemID string `json:"item_id" binding:"required,min=1,max=255"`
}
