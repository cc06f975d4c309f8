// Package model holds the GORM structs that mirror the relational schema.
package model

// All returns every persistence model in dependency order, for migrations and code generation.
func All() []any {
	return []any{
		&AccountModel{},
		&RestaurantProfileModel{},
		&NGOProfileModel{},
		&DonationModel{},
		&ChatThreadModel{},
		&ChatMessageModel{},
		&UserDeviceModel{},
	}
}
