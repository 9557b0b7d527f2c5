package transfer

type PublishPageRequest struct {
	ApprovedPageID string `json:"approvedPageId"`
}

type PublishPageResponse struct {
	PostID int64  `json:"postId"`
	Status string `json:"status"`
}

// SweepResult counts what one publication sweep did. Skipped items were
// claimed by a concurrent sweep between selection and claim.
type SweepResult struct {
	Selected  int `json:"selected"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type ConnectionStatus struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}
