package checkout

type ChooseMethodRequest struct {
	Method Method `json:"method" binding:"required,oneof=CASH CARD"`
}

type CompleteCardRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

type AttemptsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
