package transfer

type ApprovePageRequest struct {
	PageID         string `json:"pageId"`
	Title          string `json:"title"`
	SeoTitle       string `json:"seoTitle"`
	SeoDescription string `json:"seoDescription"`
	AltText        string `json:"altText"`
	Category       string `json:"category"`
}

type ApprovePageResponse struct {
	ApprovedID string `json:"approvedId"`
	Status     string `json:"status"`
}

type RejectPageRequest struct {
	PageID   string `json:"pageId"`
	Feedback string `json:"feedback"`
}

type GenerateSeoRequest struct {
	Title string `json:"title"`
	Idea  string `json:"idea"`
}

type SeoContent struct {
	SeoTitle       string `json:"seoTitle"`
	SeoDescription string `json:"seoDescription"`
	AltText        string `json:"altText"`
}
