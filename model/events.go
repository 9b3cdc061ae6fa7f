package model

// Event names set on the transaction via SetEvent.
const (
	EventCropCreated        = "CropCreated"
	EventCropTransferred    = "CropTransferred"
	EventCropDelivered      = "CropDelivered"
	EventDestinationUpdated = "DestinationUpdated"
)

// CropCreatedEvent carries the full initial record of a new crop.
type CropCreatedEvent struct {
	ID          CropID `json:"id"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Owner       string `json:"owner"`
}

// CropTransferredEvent carries the custody change together with the crop identity fields.
type CropTransferredEvent struct {
	ID          CropID `json:"id"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	FromOwner   string `json:"fromOwner"`
	ToOwner     string `json:"toOwner"`
}

// CropDeliveredEvent marks the terminal transition.
type CropDeliveredEvent struct {
	ID          CropID `json:"id"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	FinalOwner  string `json:"finalOwner"`
}

// DestinationUpdatedEvent is emitted when the owner reroutes an undelivered crop.
type DestinationUpdatedEvent struct {
	ID             CropID `json:"id"`
	Name           string `json:"name"`
	Origin         string `json:"origin"`
	OldDestination string `json:"oldDestination"`
	NewDestination string `json:"newDestination"`
	Owner          string `json:"owner"`
}
