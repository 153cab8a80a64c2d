package dto

// ToggleResponse reports the post-toggle state: the viewer's new liked
// flag and the recomputed edge count.
type ToggleResponse struct {
	ViewerLiked bool  `json:"viewer_liked"`
	LikesCount  int64 `json:"likes_count"`
}

// CommentCreateRequest is the body for appending a comment to a subject.
type CommentCreateRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}
