package enums

import "fmt"

// BatchStatus tracks the lifecycle of a sub-group pooled-order batch.
type BatchStatus string

const (
	BatchStatusActive            BatchStatus = "active"
	BatchStatusPaymentCollection BatchStatus = "payment_collection"
	BatchStatusCompleted         BatchStatus = "completed"
	BatchStatusCancelled         BatchStatus = "cancelled"
)

var validBatchStatuses = []BatchStatus{
	BatchStatusActive,
	BatchStatusPaymentCollection,
	BatchStatusCompleted,
	BatchStatusCancelled,
}

// IsOpen reports whether the batch is still visible to buyers.
func (b BatchStatus) IsOpen() bool {
	return b == BatchStatusActive || b == BatchStatusPaymentCollection
}

// String implements fmt.Stringer.
func (b BatchStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BatchStatus.
func (b BatchStatus) IsValid() bool {
	for _, candidate := range validBatchStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBatchStatus converts raw input into a BatchStatus.
func ParseBatchStatus(value string) (BatchStatus, error) {
	for _, candidate := range validBatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid batch status %q", value)
}
