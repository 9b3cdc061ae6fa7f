package model

import "time"

// CropID is the registry-assigned identifier of a crop. The first issued id is 0.
type CropID = uint64

// Crop is one tracked item and its custody state.
type Crop struct {
	ObjectType    string    `json:"objectType"`    // "Crop"
	ID            CropID    `json:"id"`            // Assigned from the registry counter, never reused
	Name          string    `json:"name"`          // Immutable after creation
	Origin        string    `json:"origin"`        // Immutable after creation
	Destination   string    `json:"destination"`   // Mutable until delivery
	CurrentOwner  string    `json:"currentOwner"`  // Identity token of the custody owner
	IsDelivered   bool      `json:"isDelivered"`   // Terminal once true
	CreatedAt     time.Time `json:"createdAt"`     // Tx timestamp of creation
	LastUpdatedAt time.Time `json:"lastUpdatedAt"` // Tx timestamp of the latest mutation
	HistoryLength uint32    `json:"historyLength"` // Number of history entries written for this crop
}

// CropDetails is the public read view of a crop.
type CropDetails struct {
	Name         string `json:"name"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	CurrentOwner string `json:"currentOwner"`
	IsDelivered  bool   `json:"isDelivered"`
}

// HistoryEntry is one immutable audit record. Entries of a crop are ordered by Sequence.
type HistoryEntry struct {
	CropID    CropID    `json:"cropId"`
	Sequence  uint32    `json:"sequence"`
	Detail    string    `json:"detail"`    // e.g. "Crop created", "Transferred to new owner"
	Actor     string    `json:"actor"`     // Identity token credited with the event
	Timestamp time.Time `json:"timestamp"` // Tx timestamp
	TxID      string    `json:"txId"`
}

// PaginatedCropResponse is returned by paginated crop listings.
type PaginatedCropResponse struct {
	Crops        []*Crop `json:"crops"`
	NextBookmark string  `json:"nextBookmark"` // Empty when there are no further pages
	FetchedCount int32   `json:"fetchedCount"`
}
