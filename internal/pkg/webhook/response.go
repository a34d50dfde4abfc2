package webhook

import "github.com/gofiber/fiber/v2"

// Response is the acknowledgment body returned to the provider.
type Response struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
}

const invalidSignatureMessage = "Invalid signature"

func acknowledged() (Response, int) {
	return Response{Received: true}, fiber.StatusOK
}

func duplicate() (Response, int) {
	return Response{Received: true, Duplicate: true}, fiber.StatusOK
}

// acknowledgedWithError keeps the 200 status so the provider does not
// redeliver an authenticated event; the failure lives in the body and ledger.
func acknowledgedWithError(err error) (Response, int) {
	return Response{Received: true, Error: err.Error()}, fiber.StatusOK
}

func rejected() (Response, int) {
	return Response{Received: false, Error: invalidSignatureMessage}, fiber.StatusBadRequest
}
