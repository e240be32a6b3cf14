package domain

import "fmt"

// Account represents a registered user account.
type Account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
}

// Sanitized returns a copy of the account safe to hand outside the core:
// the password hash is stripped and must never be serialized outward.
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	return a
}

// StoragePartition selects the physical collection backing the logical
// "users" collection. It is resolved exactly once at startup.
type StoragePartition string

const (
	PartitionDev  StoragePartition = "dev"
	PartitionTest StoragePartition = "test"
	PartitionProd StoragePartition = "prod"
)

// ParsePartition validates the environment label against the closed set of
// known partitions. An unrecognized label is a fatal configuration error.
func ParsePartition(label string) (StoragePartition, error) {
	switch StoragePartition(label) {
	case PartitionDev, PartitionTest, PartitionProd:
		return StoragePartition(label), nil
	default:
		return "", fmt.Errorf("unknown environment partition %q (expected dev, test, or prod)", label)
	}
}

// UsersTable returns the table name backing the users collection for this
// partition. Production owns the bare table; other partitions are suffixed.
func (p StoragePartition) UsersTable() string {
	if p == PartitionProd {
		return "users"
	}
	return fmt.Sprintf("users_%s", p)
}

func (p StoragePartition) String() string {
	return string(p)
}
