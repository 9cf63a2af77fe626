package models

// Envelope is the uniform JSON body returned by every product endpoint.
type Envelope struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Product  *Product  `json:"product,omitempty"`
	Products []Product `json:"products,omitempty"`
}
