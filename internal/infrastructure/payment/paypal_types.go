package payment

// paypalTokenResponse is the OAuth2 client-credentials token response
type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// paypalAmount is the money representation in the Orders API
type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// paypalCapture is a capture within a purchase unit
type paypalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Amount paypalAmount `json:"amount"`
}

// paypalPurchaseUnit groups the amount and captures of an order
type paypalPurchaseUnit struct {
	Amount   paypalAmount `json:"amount"`
	Payments struct {
		Captures []paypalCapture `json:"captures"`
	} `json:"payments"`
}

// paypalOrderResponse is the Orders API order detail response
type paypalOrderResponse struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
}

// paypalErrorResponse is the error envelope returned by the REST API
type paypalErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Order statuses the adapter cares about
const (
	paypalOrderStatusCompleted = "COMPLETED"
	paypalOrderStatusApproved  = "APPROVED"
)
