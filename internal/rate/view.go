package rate

// ConvertRequest is the inbound conversion message shared by the REST and
// WebSocket transports.
type ConvertRequest struct {
	Date       string `json:"date" example:"2024-03-02"`
	BaseCcy    string `json:"baseCcy" example:"eur"`
	BaseAmt    any    `json:"baseAmt" swaggertype:"string" example:"100"`
	CounterCcy string `json:"counterCcy" example:"jpy"`
}

// ConvertView is the uniform reply to a ConvertRequest. Answer is null on error.
type ConvertView struct {
	Msg    string   `json:"msg"`
	Error  bool     `json:"error"`
	Answer *float64 `json:"answer"`
}

type CurrenciesView struct {
	Date  string   `json:"date"`
	Codes []string `json:"codes"`
}

func errorView(msg string) ConvertView {
	return ConvertView{Msg: msg, Error: true}
}
