package model

type Transaction struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	FromUserID  string `json:"from_user_id"`
	ToUserID    string `json:"to_user_id"`
	CommunityID string `json:"community_id"`
	Points      uint64 `json:"points"`
	Message     string `json:"message"`
	Status      string `json:"status"`
}

type SendTransactionRequest struct {
	CommunityHandle string `json:"community_handle"`
	ToUserID        string `json:"to_user_id"`
	Points          uint64 `json:"points"`
	Message         string `json:"message"`
}

type SendTransactionResponse struct {
	ID string `json:"id"`

	// Status is approved if the transfer applied synchronously, or pending
	// if it awaits review.
	Status string `json:"status"`
}

type ApproveTransactionRequest struct {
	ID string `json:"id"`
}

type ApproveTransactionResponse struct {
	// Status is approved, or rejected when the sender's balance no longer
	// covers the transfer.
	Status string `json:"status"`
}

type RejectTransactionRequest struct {
	ID string `json:"id"`
}

type RejectTransactionResponse struct{}

type GetMyTransactionsRequest struct {
	Status string `json:"status"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetMyTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type GetPendingTransactionsRequest struct {
	CommunityHandle string `json:"community_handle"`
}

type GetPendingTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}
