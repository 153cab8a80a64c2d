package dto

// Admin mutation bodies. IDs are path parameters; a PUT reuses the same
// body as the POST for its type.

type TrickRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Category    string `json:"category" binding:"required,oneof=flip grind grab air balance"`
	Difficulty  int    `json:"difficulty" binding:"required,min=1,max=10"`
	Description string `json:"description" binding:"max=5000"`
}

type ArticleRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
	Slug  string `json:"slug" binding:"required,min=1,max=255"`
	Body  string `json:"body" binding:"required"`
}

type ProductRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=255"`
	Brand      string `json:"brand" binding:"max=100"`
	PriceCents int64  `json:"price_cents" binding:"min=0"`
	URL        string `json:"url" binding:"omitempty,url"`
}

type ParkRequest struct {
	Name      string  `json:"name" binding:"required,min=1,max=255"`
	City      string  `json:"city" binding:"max=100"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
